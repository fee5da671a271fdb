package billing

import (
	"strings"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

type Method string

const (
	MethodKaspiQR  Method = "kaspi_qr"
	MethodCard     Method = "card"
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
)

var methodAliases = map[string]Method{
	"kaspi_qr":      MethodKaspiQR,
	"kaspi":         MethodKaspiQR,
	"qr":            MethodKaspiQR,
	"card":          MethodCard,
	"cash":          MethodCash,
	"transfer":      MethodTransfer,
	"bank_transfer": MethodTransfer,
}

// ParseMethod accepts the canonical names and a few spellings used at the desk,
// e.g. "Kaspi QR" or "Cash".
func ParseMethod(s string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)

	if m, ok := methodAliases[key]; ok {
		return m, nil
	}
	return "", httperr.ErrValidation("invalid_payment_method", "Unknown payment method: "+s)
}
