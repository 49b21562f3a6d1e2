package datagen

import (
	"crypto/rand"

	"github.com/supplyworks/rebase/rebase"
)

func RandBytes32() (b rebase.Bytes32) {
	rand.Read(b[:])
	return
}

func RandAddress() (a rebase.Address) {
	rand.Read(a[:])
	return
}
