package telegram

import (
	"crypto/hmac"
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
	"time"
)

const (
	InitDataMaxAge = time.Hour
	maxFutureSkew  = 5 * time.Minute
)

var ErrBadInitData = errors.New("invalid telegram init data")

// ValidateInitData verifies the WebApp init_data signature and that
// auth_date is within the last hour (small future skew tolerated).
func ValidateInitData(initData, botToken string, now time.Time) (*WebAppUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrBadInitData
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrBadInitData
	}
	values.Del("hash")

	provided, err := hex.DecodeString(hash)
	if err != nil {
		return nil, ErrBadInitData
	}
	if !hmac.Equal(signature(values, botToken), provided) {
		return nil, ErrBadInitData
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrBadInitData
	}
	age := now.Sub(time.Unix(authDate, 0))
	if age > InitDataMaxAge || age < -maxFutureSkew {
		return nil, ErrBadInitData
	}

	u, err := ParseUser(values)
	if err != nil || u.ID == 0 {
		return nil, ErrBadInitData
	}
	return u, nil
}
