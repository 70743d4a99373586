package domain

import "github.com/shopspring/decimal"

// CurrencyScale 金額以最小貨幣單位 (分) 儲存，小數點後 2 位
const CurrencyScale = 2

// FormatMoney 將最小單位金額轉為 "$250.00" 格式
// 使用 decimal 避免 float 除法造成的誤差
func FormatMoney(minor int64) string {
	return "$" + decimal.New(minor, -CurrencyScale).StringFixed(CurrencyScale)
}
