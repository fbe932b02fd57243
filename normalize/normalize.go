// Package normalize reshapes an fdk.Accumulator into one fdk.Document per
// fund.
package normalize

import (
	"time"

	"github.com/cvmdata/fdk"
)

// Family is a set of files holding the same kind of data, one per period.
// A family may be published under several prefixes; a file is named
// prefix + period + ".csv".
type Family struct {
	Name     string
	Prefixes []string
}

// Files returns the names of the files of f for period, in prefix order.
func (f Family) Files(period string) []string {
	names := make([]string, len(f.Prefixes))
	for i, prefix := range f.Prefixes {
		names[i] = prefix + period + ".csv"
	}
	return names
}

// rows returns the rows of every file of f for period, in prefix order.
func (f Family) rows(files map[string][]fdk.RawRecord, period string) []fdk.RawRecord {
	var rows []fdk.RawRecord
	for _, name := range f.Files(period) {
		rows = append(rows, files[name]...)
	}
	return rows
}

// The file families a Document is built from. Portfolio composition comes
// either as the CDA extract's first block or as a single comp_fi_ file.
var (
	Holdings  = Family{Name: "holdings", Prefixes: []string{"cda_fi_BLC_1_", "comp_fi_"}}
	Balances  = Family{Name: "balances", Prefixes: []string{"balancete_fi_"}}
	NetWorth  = Family{Name: "net worth", Prefixes: []string{"cda_fi_PL_"}}
	DailyInfo = Family{Name: "daily info", Prefixes: []string{"inf_diario_fi_"}}
)

// Source columns.
const (
	ColDate = "DT_COMPTC"

	ColName = "DENOM_SOCIAL"
	ColType = "TP_FUNDO_CLASSE"

	ColPlan    = "PLANO_CONTA_BALCTE"
	ColAccount = "CD_CONTA_BALCTE"
	ColBalance = "VL_SALDO_BALCTE"

	ColApplication  = "TP_APLIC"
	ColAssetType    = "TP_ATIVO"
	ColLinkedIssuer = "EMISSOR_LIGADO"
	ColNegotiation  = "TP_NEGOC"
	ColQuantity     = "QT_POS_FINAL"
	ColMarketValue  = "VL_MERC_POS_FINAL"
	ColCost         = "VL_CUSTO_POS_FINAL"
	ColISIN         = "CD_ISIN"
	ColSelic        = "CD_SELIC"
	ColIssueDate    = "DT_EMISSAO"
	ColMaturityDate = "DT_VENC"

	ColNetWorth = "VL_PATRIM_LIQ"

	ColTotal        = "VL_TOTAL"
	ColQuota        = "VL_QUOTA"
	ColInflow       = "CAPTC_DIA"
	ColOutflow      = "RESG_DIA"
	ColShareholders = "NR_COTST"
)

// Report counts what Normalize did with the identifiers of the Accumulator.
// Retained plus Dropped() always equals Total.
type Report struct {
	Total      int
	Retained   int
	NoPeriod   int // no file name of the identifier carries a period token
	Incomplete int // name or type of the fund could not be resolved
}

// Dropped is the number of identifiers left out of the document set.
func (r Report) Dropped() int {
	return r.NoPeriod + r.Incomplete
}

// Normalizer builds Documents. The zero value is not usable, use
// NewNormalizer.
type Normalizer struct {
	Holdings  Family
	Balances  Family
	NetWorth  Family
	DailyInfo Family

	Log   fdk.Logger
	Stats fdk.Statter
}

// NewNormalizer returns a Normalizer reading the standard file families.
// Use WithPrefixes to remap them.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		Holdings:  Holdings,
		Balances:  Balances,
		NetWorth:  NetWorth,
		DailyInfo: DailyInfo,
		Log:       fdk.NopLogger{},
		Stats:     fdk.NopStatter{},
	}
}

// WithPrefixes replaces the prefixes of the families for which a non-empty
// list is given.
func (n *Normalizer) WithPrefixes(holdings, balances, netWorth, dailyInfo []string) *Normalizer {
	for _, f := range []struct {
		fam      *Family
		prefixes []string
	}{
		{&n.Holdings, holdings},
		{&n.Balances, balances},
		{&n.NetWorth, netWorth},
		{&n.DailyInfo, dailyInfo},
	} {
		if len(f.prefixes) > 0 {
			f.fam.Prefixes = f.prefixes
		}
	}
	return n
}

// Normalize builds the Document of every identifier in acc and keeps the
// complete ones. Documents are always rebuilt from scratch. Identifiers are
// visited in sorted order.
func (n *Normalizer) Normalize(acc fdk.Accumulator) (fdk.Documents, Report) {
	start := time.Now()
	docs := make(fdk.Documents)
	report := Report{Total: len(acc)}
	for _, id := range acc.Identifiers() {
		doc, ok := n.Document(id, acc[id])
		if !ok {
			n.Log.Debugf("dropping %s: no period in %v", id, acc.Files(id))
			report.NoPeriod++
			continue
		}
		if !doc.Complete() {
			n.Log.Debugf("dropping %s: name or type unresolved", id)
			report.Incomplete++
			continue
		}
		docs[id] = doc
		report.Retained++
	}
	n.Stats.Count("entities.retained", int64(report.Retained), 1)
	n.Stats.Count("entities.dropped", int64(report.Dropped()), 1)
	n.Stats.Timing("normalize", time.Since(start), 1)
	return docs, report
}

// Document builds the Document of id from the files holding its rows. It
// returns false if no file name carries a period token. The Document may be
// incomplete.
func (n *Normalizer) Document(id string, files map[string][]fdk.RawRecord) (*fdk.Document, bool) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	periods := fdk.Periods(names)
	if len(periods) == 0 {
		return nil, false
	}

	doc := fdk.NewDocument(id)
	doc.Fund.Name, doc.Fund.Type = n.identity(files, periods)
	for _, p := range periods {
		for _, row := range n.Balances.rows(files, p) {
			doc.Balances = append(doc.Balances, balance(row))
		}
	}
	for _, p := range periods {
		for _, row := range n.Holdings.rows(files, p) {
			doc.Holdings = append(doc.Holdings, holding(row))
		}
	}
	for _, p := range periods {
		for _, row := range n.NetWorth.rows(files, p) {
			doc.NetWorth = append(doc.NetWorth, netWorth(row))
		}
	}
	for _, p := range periods {
		for _, row := range n.DailyInfo.rows(files, p) {
			doc.DailyInfo = append(doc.DailyInfo, dailyInfo(row))
		}
	}
	return doc, true
}

// identity resolves the fund name and type from the holdings files, oldest
// period first. A row carrying both wins. Failing that, each is taken from
// the first row carrying it.
func (n *Normalizer) identity(files map[string][]fdk.RawRecord, periods []string) (name, typ *string) {
	for _, p := range periods {
		for _, row := range n.Holdings.rows(files, p) {
			nm, tp := fdk.String(row[ColName]), fdk.String(row[ColType])
			if nm != nil && tp != nil {
				return nm, tp
			}
		}
	}
	for _, p := range periods {
		for _, row := range n.Holdings.rows(files, p) {
			if name == nil {
				name = fdk.String(row[ColName])
			}
			if typ == nil {
				typ = fdk.String(row[ColType])
			}
			if name != nil && typ != nil {
				return name, typ
			}
		}
	}
	return name, typ
}

func balance(row fdk.RawRecord) fdk.BalanceEntry {
	return fdk.BalanceEntry{
		Date:    fdk.Date(row[ColDate]),
		Plan:    fdk.String(row[ColPlan]),
		Account: fdk.String(row[ColAccount]),
		Balance: fdk.Float(row[ColBalance]),
	}
}

func holding(row fdk.RawRecord) fdk.HoldingEntry {
	return fdk.HoldingEntry{
		Date:         fdk.Date(row[ColDate]),
		Application:  fdk.String(row[ColApplication]),
		AssetType:    fdk.String(row[ColAssetType]),
		LinkedIssuer: fdk.Flag(row[ColLinkedIssuer]),
		Negotiation:  fdk.String(row[ColNegotiation]),
		Quantity:     fdk.Float(row[ColQuantity]),
		MarketValue:  fdk.Float(row[ColMarketValue]),
		Cost:         fdk.Float(row[ColCost]),
		ISIN:         fdk.String(row[ColISIN]),
		Selic:        fdk.String(row[ColSelic]),
		IssueDate:    fdk.Date(row[ColIssueDate]),
		MaturityDate: fdk.Date(row[ColMaturityDate]),
	}
}

func netWorth(row fdk.RawRecord) fdk.NetWorthEntry {
	return fdk.NetWorthEntry{
		Date:     fdk.Date(row[ColDate]),
		NetWorth: fdk.Float(row[ColNetWorth]),
	}
}

func dailyInfo(row fdk.RawRecord) fdk.DailyInfoEntry {
	return fdk.DailyInfoEntry{
		Date:         fdk.Date(row[ColDate]),
		Total:        fdk.Float(row[ColTotal]),
		Quota:        fdk.Float(row[ColQuota]),
		NetWorth:     fdk.Float(row[ColNetWorth]),
		Inflow:       fdk.Float(row[ColInflow]),
		Outflow:      fdk.Float(row[ColOutflow]),
		Shareholders: fdk.Float(row[ColShareholders]),
	}
}
