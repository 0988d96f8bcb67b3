package domain

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tonkeeper/tongo"
)

// ParseAccount accepts a user-friendly (base64url) address in either the
// bounceable or the non-bounceable form.
func ParseAccount(address string) (tongo.AccountID, error) {
	accid, err := tongo.AccountIDFromBase64Url(strings.TrimSpace(address))
	if err != nil {
		return tongo.AccountID{}, errors.Wrapf(ErrorInvalidAccount, "%q", address)
	}
	return accid, nil
}

// AccountKey is the canonical form an account is stored under.
func AccountKey(accid tongo.AccountID) string {
	return accid.ToHuman(true, false)
}

func IsZeroAccount(accid tongo.AccountID) bool {
	return accid == tongo.AccountID{}
}
