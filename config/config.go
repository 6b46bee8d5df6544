package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Seoul must resolve on hosts without zoneinfo

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Timezone    string `env:"TIMEZONE" envDefault:"Asia/Seoul"`
	RunOnce     bool   `env:"RUN_ONCE" envDefault:"false"`
	Kis         Kis
	API         API
	Token       Token
	Report      Report
	Renderer    Renderer
	Telegram    Telegram
	ContentApi  ContentApi
	Redis       Redis
	Postgres    Postgres
	GoogleDrive GoogleDrive
	Jobs        Jobs
}

type Kis struct {
	UrlBase   string `env:"KIS_URL_BASE"`
	AppKey    string `env:"KIS_APP_KEY"`
	AppSecret string `env:"KIS_APP_SECRET"`
}

type API struct {
	Debug   bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
}

type Token struct {
	// file or redis
	Store    string `env:"TOKEN_STORE" envDefault:"file"`
	File     string `env:"TOKEN_FILE" envDefault:"token.json"`
	RedisKey string `env:"TOKEN_REDIS_KEY" envDefault:"kis:access_token"`
}

type Report struct {
	Name          string `env:"REPORT_NAME" envDefault:"institution_top_report"`
	OutputDir     string `env:"REPORT_OUTPUT_DIR" envDefault:"img"`
	TopN          int    `env:"REPORT_TOP_N" envDefault:"10"`
	LookbackRows  int    `env:"REPORT_LOOKBACK_ROWS" envDefault:"30"`
	AmountDivisor int64  `env:"REPORT_AMOUNT_DIVISOR" envDefault:"100"`
	Source        string `env:"REPORT_SOURCE" envDefault:"※ 출처 : MQ(Money Quotient)"`
	XlsxEnabled   bool   `env:"REPORT_XLSX_ENABLED" envDefault:"false"`
}

type Renderer struct {
	// wkhtmltoimage or chrome
	Backend    string        `env:"RENDER_BACKEND" envDefault:"wkhtmltoimage"`
	BinaryPath string        `env:"WKHTMLTOIMAGE_PATH" envDefault:""`
	ChromePath string        `env:"CHROME_PATH" envDefault:""`
	Width      int           `env:"RENDER_WIDTH" envDefault:"600"`
	Timeout    time.Duration `env:"RENDER_TIMEOUT" envDefault:"60s"`
}

type Telegram struct {
	Token      string        `env:"TELEGRAM_TOKEN" envDefault:""`
	ChatID     int64         `env:"TELEGRAM_CHAT_ID" envDefault:"0"`
	TestChatID int64         `env:"TELEGRAM_TEST_CHAT_ID" envDefault:"0"`
	UpdTimeout time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
}

type ContentApi struct {
	Url      string `env:"CONTENT_API_URL" envDefault:""`
	Token    string `env:"CONTENT_API_TOKEN" envDefault:""`
	Category string `env:"CONTENT_API_CATEGORY" envDefault:"기관순매수"`
	Writer   string `env:"CONTENT_API_WRITER" envDefault:"admin"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Postgres struct {
	Enabled         bool   `env:"PG_ENABLED" envDefault:"false"`
	Host            string `env:"PG_HOST" envDefault:"localhost"`
	Port            int    `env:"PG_PORT" envDefault:"5432"`
	DbName          string `env:"PG_DB_NAME" envDefault:"netbuy"`
	Password        string `env:"PG_PASSWORD" envDefault:""`
	User            string `env:"PG_USER" envDefault:"postgres"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"4"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"migrations"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FolderID        string        `env:"GOOGLE_DRIVE_FOLDER_ID" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"720h"`
}

type Jobs struct {
	ReportCrontab       string `env:"REPORT_CRONTAB" envDefault:"40 15 * * 1-5"`
	DriveCleanupCrontab string `env:"DRIVE_CLEANUP_CRONTAB" envDefault:"0 4 * * *"`
}

// ConfigurationError reports settings that must be present before any network call.
type ConfigurationError struct {
	Missing []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("configuration error: missing %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Check returns a ConfigurationError naming every unset KIS variable.
func (k Kis) Check() error {
	var missing []string
	if k.AppKey == "" {
		missing = append(missing, "KIS_APP_KEY")
	}
	if k.AppSecret == "" {
		missing = append(missing, "KIS_APP_SECRET")
	}
	if k.UrlBase == "" {
		missing = append(missing, "KIS_URL_BASE")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) {
			missing := make([]string, 0, len(aggErr.Errors))
			for _, e := range aggErr.Errors {
				var notSet env.EnvVarIsNotSetError
				if errors.As(e, &notSet) {
					missing = append(missing, notSet.Key)
				}
			}
			if len(missing) == len(aggErr.Errors) {
				return nil, &ConfigurationError{Missing: missing, Err: err}
			}
		}
		return nil, &ConfigurationError{Err: err}
	}

	if err := cfg.Kis.Check(); err != nil {
		return nil, err
	}

	if cfg.Report.TopN <= 0 || cfg.Report.LookbackRows <= 0 || cfg.Report.AmountDivisor <= 0 {
		return nil, &ConfigurationError{Err: errors.New("REPORT_TOP_N, REPORT_LOOKBACK_ROWS and REPORT_AMOUNT_DIVISOR must be positive")}
	}

	return cfg, nil
}
