package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	raydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	pumpFun      = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
)

func TestIsRelevant_ProgramID(t *testing.T) {
	c := NewClassifier([]string{raydiumAMMV4, pumpFun}, nil)

	relevant, rule := c.IsRelevant([]string{
		"Program " + raydiumAMMV4 + " invoke [1]",
	})
	assert.True(t, relevant)
	assert.Equal(t, raydiumAMMV4, rule)

	relevant, rule = c.IsRelevant([]string{
		"Program " + pumpFun + " invoke [1]",
	})
	assert.True(t, relevant)
	assert.Equal(t, pumpFun, rule)
}

func TestIsRelevant_Keywords(t *testing.T) {
	c := NewClassifier(nil, nil)

	cases := []struct {
		line string
		rule string
	}{
		{"Program log: Instruction: Swap", "Swap"},
		{"Program log: ray_log swap executed", "swap"},
		{"Program log: Instruction: Buy", "Instruction: Buy"},
		{"Program log: Instruction: Sell", "Instruction: Sell"},
	}

	for _, tc := range cases {
		relevant, rule := c.IsRelevant([]string{tc.line})
		assert.True(t, relevant, "line %q", tc.line)
		assert.Equal(t, tc.rule, rule, "line %q", tc.line)
	}
}

func TestIsRelevant_ProgramsCheckedBeforeKeywords(t *testing.T) {
	c := NewClassifier([]string{raydiumAMMV4}, nil)

	relevant, rule := c.IsRelevant([]string{
		"Program " + raydiumAMMV4 + " log: Instruction: Swap",
	})
	assert.True(t, relevant)
	assert.Equal(t, raydiumAMMV4, rule)
}

func TestIsRelevant_NoMatch(t *testing.T) {
	c := NewClassifier([]string{raydiumAMMV4}, nil)

	relevant, rule := c.IsRelevant([]string{
		"Program 11111111111111111111111111111111 invoke [1]",
		"Program log: Instruction: Transfer",
		"Program 11111111111111111111111111111111 success",
	})
	assert.False(t, relevant)
	assert.Empty(t, rule)
}

func TestIsRelevant_EmptyLogs(t *testing.T) {
	c := NewClassifier([]string{raydiumAMMV4}, nil)

	relevant, _ := c.IsRelevant(nil)
	assert.False(t, relevant)
}

func TestIsRelevant_CustomKeywords(t *testing.T) {
	c := NewClassifier(nil, []string{"MintTo"})

	relevant, rule := c.IsRelevant([]string{"Program log: Instruction: MintTo"})
	assert.True(t, relevant)
	assert.Equal(t, "MintTo", rule)

	relevant, _ = c.IsRelevant([]string{"Program log: Instruction: Swap"})
	assert.False(t, relevant, "custom keywords replace the defaults")
}
