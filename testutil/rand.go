package testutil

import (
	"math/rand"

	"github.com/google/gofuzz"
	"github.com/onsi/ginkgo"
)

var RandSource = rand.NewSource(ginkgo.GinkgoRandomSeed())
var Rand = rand.New(RandSource)
var Fuzzer = func() *fuzz.Fuzzer {
	f := fuzz.New()
	f.RandSource(RandSource)
	return f
}()
var Fuzz = Fuzzer.Fuzz
