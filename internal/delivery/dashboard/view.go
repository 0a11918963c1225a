package dashboard

import (
	"strings"

	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const filterAll = "ALL"

var filterTypes = []string{filterAll, string(entities.ExchangeTypeCEX), string(entities.ExchangeTypeDEX)}

// ViewFilter narrows the retained list for display.
type ViewFilter struct {
	Query string
	Type  string
}

// ParseFilter normalizes the type parameter; q is kept verbatim. Unknown
// types become ALL.
func ParseFilter(q, typ string) ViewFilter {
	f := ViewFilter{Query: q, Type: filterAll}
	switch t := strings.ToUpper(strings.TrimSpace(typ)); t {
	case string(entities.ExchangeTypeCEX), string(entities.ExchangeTypeDEX):
		f.Type = t
	}
	return f
}

// Apply keeps records whose name contains Query case-insensitively and
// whose type matches Type. Order is preserved.
func (f ViewFilter) Apply(records []entities.ExchangeRecord) []entities.ExchangeRecord {
	needle := strings.ToLower(f.Query)
	out := make([]entities.ExchangeRecord, 0, len(records))
	for _, r := range records {
		if f.Type != filterAll && string(r.Type) != f.Type {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(r.Name), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FormatMoney renders v with thousands separators and no fraction digits.
func FormatMoney(v float64) string {
	return message.NewPrinter(language.English).Sprintf("$%.0f", v)
}
