package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penghee/alipay2moneywiz-sub001/internal/models"
	"github.com/penghee/alipay2moneywiz-sub001/internal/store"
)

func TestNewAccountMapperPolicies(t *testing.T) {
	tests := []struct {
		platform models.Platform
		empty    string
		unmapped string
	}{
		{models.PlatformAlipay, models.AccountAlipayBalance, models.AccountUnknown},
		{models.PlatformWechat, models.AccountWechatWallet, models.AccountUnknown},
		{models.PlatformJD, models.AccountJDWallet, "某银行卡"},
		{models.PlatformIcost, "/", "某银行卡"},
	}

	for _, tc := range tests {
		t.Run(string(tc.platform), func(t *testing.T) {
			mapper, err := NewAccountMapper(tc.platform, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.empty, mapper.Map("/"))
			assert.Equal(t, tc.unmapped, mapper.Map("某银行卡"))
		})
	}
}

func TestNewAccountMapperUnknownPlatform(t *testing.T) {
	_, err := NewAccountMapper(models.Platform("paypal"), nil)
	assert.Error(t, err)
}

func TestNewRuleClassifierJDTable(t *testing.T) {
	classifier := NewRuleClassifier(models.PlatformJD, nil)
	assert.Equal(t, "购物", classifier.Classify("数码电器", "", ""))

	plain := NewRuleClassifier(models.PlatformAlipay, nil)
	assert.Equal(t, "数码电器", plain.Classify("数码电器", "", ""))
}

func TestNewConverterAllPlatforms(t *testing.T) {
	classifier := NewRuleClassifier(models.PlatformAlipay, []store.CategoryConfig{})
	for _, platform := range models.Platforms {
		mapper, err := NewAccountMapper(platform, nil)
		require.NoError(t, err)
		converter, err := NewConverter(platform, mapper, classifier, false)
		require.NoError(t, err)
		assert.NotNil(t, converter)
	}

	_, err := NewConverter(models.Platform("paypal"), nil, classifier, true)
	assert.Error(t, err)
}
