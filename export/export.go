// Package export flattens index ledgers into the row format loaded by the BI dashboards.
//
// A ledger record holds many indices for one month; the BI wants one row per month and index:
//
//	{"Data":"2024-02-01","Indice":"R-8-N","Valor":2012.35,"VAR":0.62}
//
// Failed values, stored as "" in the ledgers, are exported as null.
package export

import (
	"context"
	"strings"

	"github.com/etnz/indices"
)

// Names of the exported files.
const (
	SectoralFile  = "indices.json"
	FinancialFile = "indices_financeiros.json"
)

// Columns of the exported rows.
const (
	ColData       = "Data"
	ColIndice     = "Indice"
	ColValor      = "Valor"
	ColVar        = "VAR"
	ColAnoVar     = "ANO_VAR"
	Col12MesesVar = "12_MESES_VAR"
)

// value returns the field of r, null when it is missing or failed.
func value(r *indices.Record, key string) indices.Value {
	v, ok := r.Get(key)
	if !ok || v.IsEmpty() {
		return indices.Null
	}
	return v
}

// Sectoral flattens ledgers where every index X is followed by its variation X_VAR, like the
// Sinduscon ledgers.
func Sectoral(ledgers ...[]*indices.Record) []*indices.Record {
	var rows []*indices.Record
	for _, records := range ledgers {
		for _, r := range records {
			date := r.Value(indices.KeyMesBase)
			for _, k := range r.Keys() {
				if k == indices.KeyMesBase || strings.HasSuffix(k, indices.VariationSuffix) {
					continue
				}
				if _, ok := r.Get(k + indices.VariationSuffix); !ok {
					continue
				}
				rows = append(rows, indices.NewRecord(
					ColData, date,
					ColIndice, k,
					ColValor, value(r, k),
					ColVar, value(r, k+indices.VariationSuffix),
				))
			}
		}
	}
	return rows
}

// Financial flattens the composite ledger. Every row has the six columns; the INCC row carries
// its year-to-date and twelve-month variations.
func Financial(records []*indices.Record) []*indices.Record {
	var rows []*indices.Record
	for _, r := range records {
		date := r.Value(indices.KeyMesBase)
		row := func(indice string, valor, variation, ano, doze indices.Value) {
			rows = append(rows, indices.NewRecord(
				ColData, date,
				ColIndice, indice,
				ColValor, valor,
				ColVar, variation,
				ColAnoVar, ano,
				Col12MesesVar, doze,
			))
		}
		for _, k := range r.Keys() {
			switch {
			case k == indices.KeyMesBase:
			case k == "INCC":
				row(k, value(r, k), value(r, "INCC_MES_VAR"), value(r, "INCC_ANO_VAR"), value(r, "INCC_12_MESES_VAR"))
			case strings.HasPrefix(k, "INCC_"):
			case k == "SALARIO MINIMO":
				row(k, value(r, k), indices.Null, indices.Null, indices.Null)
			case k == "POUP_VAR":
				row("POUPANÇA", value(r, k), indices.Null, indices.Null, indices.Null)
			case strings.HasSuffix(k, indices.VariationSuffix):
			default:
				if _, ok := r.Get(k + indices.VariationSuffix); ok {
					row(k, value(r, k), value(r, k+indices.VariationSuffix), indices.Null, indices.Null)
				}
			}
		}
	}
	return rows
}

// Write replaces the file at path with rows.
func Write(ctx context.Context, path string, rows []*indices.Record) error {
	return (&indices.FileLedger{Path: path}).WriteAll(ctx, rows)
}
