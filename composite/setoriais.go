package composite

import "github.com/etnz/indices"

// Sources of the figures that are not maintained in a ledger of their own.
const (
	SourceINPC          = "CSV-INPC"
	SourceIGPDI         = "CSV-IGPDI"
	SourceIGPM          = "CSV-IGPM"
	SourceSalarioMinimo = "BCB-1619"
	SourcePoupanca      = "BCB-25"
)

// SetoriaisFin returns the groups of the sector/financial summary: IPCA and INCC come from
// their engines, everything else from src with the retry policy r.
func SetoriaisFin(ipca, incc *indices.Engine, src indices.Source, r indices.Retry) []Group {
	return []Group{
		{Name: "IPCA", Variation: "IPCA_VAR", Kind: Level, Lookup: FromEngine(ipca, "IPCA Mês")},
		{Name: "INPC", Variation: "INPC_VAR", Kind: Level, Lookup: FromSource(src, SourceINPC, r)},
		{
			Name: "INCC", Variation: "INCC_MES_VAR", Kind: Level, Lookup: FromEngine(incc, "INCC"),
			YearToDate: "INCC_ANO_VAR", TwelveMonths: "INCC_12_MESES_VAR",
		},
		{Name: "CDI", Variation: "CDI_VAR", Kind: Accumulated, Lookup: FromSource(src, indices.SourceCDI, r)},
		{Name: "IGP DI", Variation: "IGP DI_VAR", Kind: Level, Lookup: FromSource(src, SourceIGPDI, r)},
		{Name: "IGP-M", Variation: "IGP-M_VAR", Kind: Level, Lookup: FromSource(src, SourceIGPM, r)},
		{Name: "SALARIO MINIMO", Kind: Plain, Lookup: FromSource(src, SourceSalarioMinimo, r)},
		{Name: "POUP_VAR", Kind: Plain, Lookup: FromSource(src, SourcePoupanca, r)},
	}
}
