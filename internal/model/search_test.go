package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeSearchTerm 测试搜索词规范化
func TestNormalizeSearchTerm(t *testing.T) {
	assert.Equal(t, "golang tips", NormalizeSearchTerm("  Golang   Tips "))
	assert.Equal(t, "mongodb", NormalizeSearchTerm("MongoDB"))
	assert.Equal(t, "", NormalizeSearchTerm("   "))
}
