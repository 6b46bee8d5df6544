package kisModel

// Header carries the status fields every KIS quotation response has.
type Header struct {
	RtCd  string `json:"rt_cd"`
	MsgCd string `json:"msg_cd"`
	Msg1  string `json:"msg1"`
}

type TokenRequest struct {
	GrantType string `json:"grant_type"`
	AppKey    string `json:"appkey"`
	AppSecret string `json:"appsecret"`
}

type TokenResponse struct {
	AccessToken        string `json:"access_token"`
	TokenType          string `json:"token_type"`
	ExpiresIn          int    `json:"expires_in"`
	AccessTokenExpired string `json:"access_token_token_expired"`
	ErrorDescription   string `json:"error_description"`
	ErrorCode          string `json:"error_code"`
}

type RawRanking struct {
	Header
	Output []RawRankingItem `json:"output"`
}

type RawRankingItem struct {
	Name          string `json:"hts_kor_isnm"`
	Code          string `json:"mksc_shrn_iscd"`
	Price         string `json:"stck_prpr"`
	PrevDayRate   string `json:"prdy_ctrt"`
	OrgnNetBuyQty string `json:"orgn_ntby_qty"`
	OrgnNetBuyAmt string `json:"orgn_ntby_tr_pbmn"`
}

type RawDailyChart struct {
	Header
	Output2 []RawDailyBar `json:"output2"`
}

type RawDailyBar struct {
	Date   string `json:"stck_bsop_date"`
	Open   string `json:"stck_oprc"`
	High   string `json:"stck_hgpr"`
	Low    string `json:"stck_lwpr"`
	Close  string `json:"stck_clpr"`
	Volume string `json:"acml_vol"`
}

// RawIndexDaily keeps bars as generic maps: the set of fields differs between markets.
type RawIndexDaily struct {
	Header
	Output2 []map[string]any `json:"output2"`
}

type RawStockInfo struct {
	Header
	Output struct {
		Code     string `json:"pdno"`
		Name     string `json:"prdt_abrv_name"`
		MarketID string `json:"mket_id_cd"`
	} `json:"output"`
}

func (h Header) Status() Header {
	return h
}
