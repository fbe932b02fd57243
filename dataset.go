package fdk

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultBaseURL is the root of the regulator's open data portal for fund
// documents.
const DefaultBaseURL = "https://dados.cvm.gov.br/dados/FI/DOC"

// Dataset is a family of monthly archives published under one directory of
// the portal.
type Dataset struct {
	Name   string // short name used on the command line
	Dir    string // directory under the portal base URL
	Prefix string // prefix of archive names, followed by the period
}

// Archive returns the name of the archive d publishes for period.
func (d Dataset) Archive(period string) string {
	return d.Prefix + period + ".zip"
}

// Datasets lists the archive families the pipeline knows how to fetch.
var Datasets = []Dataset{
	{Name: "diario", Dir: "INF_DIARIO", Prefix: "inf_diario_fi_"},
	{Name: "balancete", Dir: "BALANCETE", Prefix: "balancete_fi_"},
	{Name: "composicao", Dir: "CDA", Prefix: "cda_fi_"},
	{Name: "lamina", Dir: "LAMINA", Prefix: "lamina_fi_"},
}

// LookupDataset finds a dataset by its short name.
func LookupDataset(name string) (Dataset, bool) {
	for _, d := range Datasets {
		if d.Name == name {
			return d, true
		}
	}
	return Dataset{}, false
}

// DatasetOf returns the dataset an archive name belongs to.
func DatasetOf(archive string) (Dataset, bool) {
	for _, d := range Datasets {
		if strings.HasPrefix(archive, d.Prefix) {
			return d, true
		}
	}
	return Dataset{}, false
}

// MonthPeriods returns the yyyymm tokens for every combination of years and
// months, years first. Years must lie between 2010 and next year (relative to
// now), and months between 1 and 12.
func MonthPeriods(years, months []int, now time.Time) ([]string, error) {
	maxYear := now.Year() + 1
	for _, y := range years {
		if y < 2010 || y > maxYear {
			return nil, errors.Errorf("year %d out of range (2010-%d)", y, maxYear)
		}
	}
	for _, m := range months {
		if m < 1 || m > 12 {
			return nil, errors.Errorf("month %d out of range (1-12)", m)
		}
	}
	periods := make([]string, 0, len(years)*len(months))
	for _, y := range years {
		for _, m := range months {
			periods = append(periods, fmt.Sprintf("%04d%02d", y, m))
		}
	}
	return periods, nil
}

// ArchiveNames returns the archive name of every dataset for every period.
func ArchiveNames(datasets []Dataset, periods []string) []string {
	names := make([]string, 0, len(datasets)*len(periods))
	for _, d := range datasets {
		for _, p := range periods {
			names = append(names, d.Archive(p))
		}
	}
	return names
}
