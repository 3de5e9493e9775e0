package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAddresses_TokensFromLine(t *testing.T) {
	addrs := ExtractAddresses([]string{
		"Program " + raydiumAMMV4 + " invoke [1] wallet=7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
	})

	assert.Equal(t, []string{
		raydiumAMMV4,
		"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
	}, addrs)
}

func TestExtractAddresses_DeduplicatesAcrossLines(t *testing.T) {
	wallet := "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	addrs := ExtractAddresses([]string{
		"transfer from " + wallet,
		"transfer to " + wallet,
		"authority " + wallet + " signer " + wallet,
	})

	assert.Equal(t, []string{wallet}, addrs)
}

func TestExtractAddresses_FirstSeenOrder(t *testing.T) {
	a := "11111111111111111111111111111111"
	b := "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

	addrs := ExtractAddresses([]string{
		"first " + a + " then " + b,
		"again " + a,
	})

	assert.Equal(t, []string{a, b}, addrs)
}

func TestExtractAddresses_LengthBounds(t *testing.T) {
	tooShort := strings.Repeat("a", 31)
	tooLong := strings.Repeat("a", 45)
	minLen := strings.Repeat("a", 32)
	maxLen := strings.Repeat("a", 44)

	addrs := ExtractAddresses([]string{
		"short " + tooShort,
		"long " + tooLong,
		"min " + minLen,
		"max " + maxLen,
	})

	assert.Equal(t, []string{minLen, maxLen}, addrs)
}

func TestExtractAddresses_MaximalRunsOnly(t *testing.T) {
	// A 45-char run is not an address and must not yield a 44-char
	// prefix; only the full maximal run is considered.
	run := strings.Repeat("a", 45)
	addrs := ExtractAddresses([]string{"x_" + run + "_y"})

	assert.Empty(t, addrs)
}

func TestExtractAddresses_NonBase58Delimiters(t *testing.T) {
	wallet := "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

	// 0, O, I and l are outside the alphabet and terminate runs.
	addrs := ExtractAddresses([]string{"l" + wallet + "0"})

	assert.Equal(t, []string{wallet}, addrs)
}

func TestExtractAddresses_EmptyLogs(t *testing.T) {
	assert.Empty(t, ExtractAddresses(nil))
	assert.Empty(t, ExtractAddresses([]string{""}))
	assert.Empty(t, ExtractAddresses([]string{"Program log: Instruction: Swap"}))
}
