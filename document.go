package fdk

// FundIdentity names the fund a Document describes. Name and Type stay nil
// until they are resolved from the holdings data.
type FundIdentity struct {
	CNPJ string  `json:"cnpj"`
	Name *string `json:"name"`
	Type *string `json:"tipo"`
}

// BalanceEntry is one account line of a monthly balance sheet.
type BalanceEntry struct {
	Date    *string  `json:"data"`
	Plan    *string  `json:"plano_conta"`
	Account *string  `json:"codigo_conta"`
	Balance *float64 `json:"saldo"`
}

// HoldingEntry is one position of the portfolio composition.
type HoldingEntry struct {
	Date         *string  `json:"data"`
	Application  *string  `json:"tipo_aplic"`
	AssetType    *string  `json:"tipo_ativo"`
	LinkedIssuer *bool    `json:"emissor_ligado"`
	Negotiation  *string  `json:"tipo_negoc"`
	Quantity     *float64 `json:"quantidade"`
	MarketValue  *float64 `json:"valor_mercado"`
	Cost         *float64 `json:"custo"`
	ISIN         *string  `json:"isin"`
	Selic        *string  `json:"selic"`
	IssueDate    *string  `json:"emissao"`
	MaturityDate *string  `json:"vencimento"`
}

// NetWorthEntry is one net worth report.
type NetWorthEntry struct {
	Date     *string  `json:"data"`
	NetWorth *float64 `json:"vl_patrim_liq"`
}

// DailyInfoEntry is one day of quota, net worth and flow information.
type DailyInfoEntry struct {
	Date         *string  `json:"data"`
	Total        *float64 `json:"vl_total"`
	Quota        *float64 `json:"vl_quota"`
	NetWorth     *float64 `json:"vl_patrim_liq"`
	Inflow       *float64 `json:"captc_dia"`
	Outflow      *float64 `json:"resg_dia"`
	Shareholders *float64 `json:"nr_cotst"`
}

// Document is the normalized record for one fund. Every series is ordered by
// the period of the file it came from, and within a period by source row
// order. The JSON names are read by external consumers and must not change.
type Document struct {
	Fund      FundIdentity     `json:"fund"`
	Balances  []BalanceEntry   `json:"balances"`
	Holdings  []HoldingEntry   `json:"applications"`
	NetWorth  []NetWorthEntry  `json:"patrimonio"`
	DailyInfo []DailyInfoEntry `json:"daily_info"`
}

// NewDocument returns a Document for id with empty (non-nil) series.
func NewDocument(id string) *Document {
	return &Document{
		Fund:      FundIdentity{CNPJ: id},
		Balances:  make([]BalanceEntry, 0),
		Holdings:  make([]HoldingEntry, 0),
		NetWorth:  make([]NetWorthEntry, 0),
		DailyInfo: make([]DailyInfoEntry, 0),
	}
}

// Complete reports whether both the name and the type of the fund are known.
// Incomplete documents are not published.
func (d *Document) Complete() bool {
	return d.Fund.Name != nil && d.Fund.Type != nil
}

// Documents maps raw entity identifiers to their Document.
type Documents map[string]*Document
