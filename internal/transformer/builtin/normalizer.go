// Package builtin holds the steps of the incident-table normalizer and the
// Normalizer constructor that assembles them in their fixed order.
package builtin

import (
	"time"

	"ispetl/internal/config"
	"ispetl/internal/transformer"
)

// Column names the normalizer reads or writes.
const (
	ColDataFato     = "data_fato"
	ColDataCom      = "data_com"
	ColHoraCom      = "hora_com"
	ColIdade        = "idade"
	ColAtualizadoEm = "atualizado_em"
	ColAnoFato      = "ano_fato"
	ColMesFato      = "mes_fato"
)

// Options configures Normalizer. Zero values fall back to the config
// defaults.
type Options struct {
	Clock       func() time.Time
	Location    *time.Location
	DateLayouts []string
	TimeLayout  string
	Sentinel    string
}

// OptionsFrom builds Options from the normalize section of the config.
func OptionsFrom(n config.Normalize) (Options, error) {
	loc, err := n.Location()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Location:    loc,
		DateLayouts: n.DateLayouts,
		TimeLayout:  n.TimeLayout,
		Sentinel:    n.Sentinel,
	}, nil
}

// Normalizer returns the six normalization steps in order: stamp the refresh
// date, derive year and month from data_fato, reduce data_com to a date,
// parse hora_com strictly, fill missing values, and render idade as text.
func Normalizer(opts Options) transformer.Chain {
	if len(opts.DateLayouts) == 0 {
		opts.DateLayouts = config.DefaultDateLayouts
	}
	if opts.TimeLayout == "" {
		opts.TimeLayout = config.DefaultTimeLayout
	}
	if opts.Sentinel == "" {
		opts.Sentinel = config.DefaultSentinel
	}
	return transformer.Chain{
		StampRefreshDate{Column: ColAtualizadoEm, Clock: opts.Clock, Location: opts.Location},
		DeriveYearMonth{Source: ColDataFato, Year: ColAnoFato, Month: ColMesFato, Layouts: opts.DateLayouts},
		NormalizeDate{Column: ColDataCom, Layouts: opts.DateLayouts},
		NormalizeTime{Column: ColHoraCom, Layout: opts.TimeLayout},
		FillMissing{Sentinel: opts.Sentinel},
		NormalizeAge{Column: ColIdade, Sentinel: opts.Sentinel},
	}
}
