package models

// Platform identifies a supported bill export source.
type Platform string

const (
	PlatformAlipay Platform = "alipay"
	PlatformWechat Platform = "wechat"
	PlatformJD     Platform = "jd"
	PlatformIcost  Platform = "icost"
)

// Platforms lists every supported platform selector.
var Platforms = []Platform{PlatformAlipay, PlatformWechat, PlatformJD, PlatformIcost}

// Valid reports whether p names a supported platform.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Sentinel category and account names shared across the pipeline.
const (
	// CategoryUncategorized marks a transaction no classifier could place.
	CategoryUncategorized = "其他"
	// CategoryTransfer is the bucket category for inter-account movements.
	// The smart matcher never learns patterns from it.
	CategoryTransfer = "转账"
	// AccountUnknown is returned by mappers configured with the sentinel
	// no-match policy.
	AccountUnknown = "未知账户"
)

// Default wallet accounts used when the raw payment method is empty or a
// placeholder. The default differs per platform.
const (
	AccountAlipayBalance = "支付宝余额"
	AccountWechatWallet  = "微信零钱"
	AccountJDWallet      = "京东小金库"
)
