package token

import "errors"

var ErrEntropy = errors.New("token: random source failure")
