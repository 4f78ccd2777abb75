package transferservice

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/concierge-bank/backend/internal/domain"
)

var (
	routingNumberRx = regexp.MustCompile(`^[0-9]{9}$`)
	accountNumberRx = regexp.MustCompile(`^[0-9]{4,}$`)
	phoneRx         = regexp.MustCompile(`^\+?[0-9][0-9()./ -]*$`)
)

// ValidateAmount parses the amount and enforces the money format: positive,
// at most 2 fractional digits. It runs before any account is touched.
func ValidateAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrNegativeAmount
	}

	if d.Exponent() < -2 {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	return d, nil
}

// ValidateParams checks the tagged-variant request as a pure function of its
// payload. Cross-entity rules (ownership, currency, balance) belong to the
// orchestrator; everything checkable from the request alone is checked here.
func ValidateParams(arg domain.CreateTransferParams) error {
	if _, err := ValidateAmount(arg.Amount); err != nil {
		return err
	}

	switch arg.Type {
	case domain.TransferInternal:
		return validateInternal(arg)
	case domain.TransferExternal:
		return validateExternal(arg)
	case domain.TransferP2P:
		return validatePeer(arg)
	}

	return domain.ErrInvalidTransferType
}

func validateInternal(arg domain.CreateTransferParams) error {
	if arg.Internal == nil || arg.Internal.ToAccountID == 0 {
		return domain.ErrMissingDestination
	}

	if arg.Internal.ToAccountID == arg.FromAccountID {
		return domain.ErrSelfTransfer
	}

	return nil
}

func validateExternal(arg domain.CreateTransferParams) error {
	if arg.External == nil {
		return domain.ErrMissingDestination
	}

	if !routingNumberRx.MatchString(arg.External.RoutingNumber) {
		return domain.ErrInvalidRoutingNumber
	}

	if !accountNumberRx.MatchString(arg.External.AccountNumber) {
		return domain.ErrInvalidAccountNumber
	}

	if strings.TrimSpace(arg.External.RecipientName) == "" {
		return domain.ErrInvalidRecipient
	}

	return nil
}

func validatePeer(arg domain.CreateTransferParams) error {
	if arg.Peer == nil {
		return domain.ErrMissingDestination
	}

	email, phone := arg.Peer.Email, arg.Peer.Phone

	if (email == "") == (phone == "") {
		return domain.ErrInvalidPeerContact
	}

	if email != "" && !strings.Contains(email, "@") {
		return domain.ErrInvalidPeerContact
	}

	if phone != "" {
		if !phoneRx.MatchString(phone) || countDigits(phone) < 7 {
			return domain.ErrInvalidPeerContact
		}
	}

	return nil
}

func countDigits(s string) int {
	n := 0

	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}

	return n
}
