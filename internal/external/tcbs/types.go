package tcbs

// Statement and ratio payloads from the TCBS public analysis API.
// Monetary statement figures arrive in billions of VND; per-share
// figures (EPS, BVPS) in whole VND. Quarter 5 marks a yearly row.

// IncomeStatement is one yearly income statement row.
type IncomeStatement struct {
	Ticker            string  `json:"ticker"`
	Year              int     `json:"year"`
	Quarter           int     `json:"quarter"`
	Revenue           float64 `json:"revenue"`
	GrossProfit       float64 `json:"grossProfit"`
	OperationProfit   float64 `json:"operationProfit"`
	PreTaxProfit      float64 `json:"preTaxProfit"`
	PostTaxProfit     float64 `json:"postTaxProfit"`
	ShareHolderIncome float64 `json:"shareHolderIncome"`
	EBITDA            float64 `json:"ebitda"`
}

// BalanceSheet is one yearly balance sheet row.
type BalanceSheet struct {
	Ticker     string  `json:"ticker"`
	Year       int     `json:"year"`
	Quarter    int     `json:"quarter"`
	Asset      float64 `json:"asset"`
	Debt       float64 `json:"debt"`
	Equity     float64 `json:"equity"`
	Cash       float64 `json:"cash"`
	ShortAsset float64 `json:"shortAsset"`
	ShortDebt  float64 `json:"shortDebt"`
	Inventory  float64 `json:"inventory"`
}

// CashFlow is one yearly cash flow row. FromSale is cash from
// operating activities; InvestCost is capital expenditure (negative).
type CashFlow struct {
	Ticker        string  `json:"ticker"`
	Year          int     `json:"year"`
	Quarter       int     `json:"quarter"`
	FromSale      float64 `json:"fromSale"`
	FromInvest    float64 `json:"fromInvest"`
	FromFinancial float64 `json:"fromFinancial"`
	InvestCost    float64 `json:"investCost"`
	FreeCashFlow  float64 `json:"freeCashFlow"`
}

// FinancialRatio is one yearly ratio row. Bank-only fields
// (BadDebtPercentage, ProvisionOnBadDebt) are zero for non-banks.
type FinancialRatio struct {
	Ticker                string  `json:"ticker"`
	Year                  int     `json:"year"`
	Quarter               int     `json:"quarter"`
	PriceToEarning        float64 `json:"priceToEarning"`
	PriceToBook           float64 `json:"priceToBook"`
	ValueBeforeEBITDA     float64 `json:"valueBeforeEbitda"`
	ROE                   float64 `json:"roe"`
	ROA                   float64 `json:"roa"`
	EarningPerShare       float64 `json:"earningPerShare"`
	BookValuePerShare     float64 `json:"bookValuePerShare"`
	GrossProfitMargin     float64 `json:"grossProfitMargin"`
	OperatingProfitMargin float64 `json:"operatingProfitMargin"`
	Dividend              float64 `json:"dividend"`
	DebtOnEquity          float64 `json:"debtOnEquity"`
	DebtOnAsset           float64 `json:"debtOnAsset"`
	CurrentPayment        float64 `json:"currentPayment"`
	QuickPayment          float64 `json:"quickPayment"`
	BadDebtPercentage     float64 `json:"badDebtPercentage"`
	ProvisionOnBadDebt    float64 `json:"provisionOnBadDebt"`
}

// Overview is the company overview payload. OutstandingShare is in
// millions of shares.
type Overview struct {
	Ticker           string  `json:"ticker"`
	Exchange         string  `json:"exchange"`
	ShortName        string  `json:"shortName"`
	Industry         string  `json:"industry"`
	IndustryEn       string  `json:"industryEn"`
	OutstandingShare float64 `json:"outstandingShare"`
	EstablishedYear  string  `json:"establishedYear"`
	Website          string  `json:"website"`
}

// Bar is one price bar from the stock-insight endpoint.
type Bar struct {
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
	TradingDate string  `json:"tradingDate"`
}

type barsResponse struct {
	Ticker string `json:"ticker"`
	Data   []Bar  `json:"data"`
}
