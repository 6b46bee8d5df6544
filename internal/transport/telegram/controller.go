package telegram

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/netbuy_report_bot/internal/service"
	"github.com/KotFed0t/netbuy_report_bot/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	helpMsg        = "기관 순매수 리포트 봇입니다.\n/report - 리포트를 지금 생성합니다"
	reportStartMsg = "리포트 생성을 시작합니다..."
	reportBusyMsg  = "리포트를 이미 생성 중입니다"
	reportDoneMsg  = "리포트 발송 완료"
	reportFailMsg  = "리포트 생성 실패: "
)

type ReportService interface {
	Run(ctx context.Context) error
}

type Controller struct {
	reportService ReportService
}

func NewController(reportService ReportService) *Controller {
	return &Controller{reportService: reportService}
}

func (ctrl *Controller) Start(c tele.Context) error {
	return c.Reply(helpMsg)
}

// Report runs the report pipeline on demand.
func (ctrl *Controller) Report(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	_ = c.Reply(reportStartMsg)

	err := ctrl.reportService.Run(ctx)
	if errors.Is(err, service.ErrRunInProgress) {
		return c.Reply(reportBusyMsg)
	}
	if err != nil {
		slog.Error("report run failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Reply(reportFailMsg + err.Error())
	}

	return c.Reply(reportDoneMsg)
}
