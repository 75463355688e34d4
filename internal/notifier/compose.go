package notifier

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

type Message struct {
	Subject string
	HTML    string
	Text    string
}

const cell = `style="padding:6px 8px;border:1px solid #ddd;"`

// OrderConfirmation renders the itemized confirmation mail for a committed order.
func OrderConfirmation(order models.Order) Message {
	var rows, text strings.Builder
	for _, d := range order.Details {
		fmt.Fprintf(&rows, `<tr><td %s>%d</td><td %s>%d</td><td %s>%s</td><td %s>%s</td></tr>`,
			cell, d.ProductID, cell, d.Quantity, cell, FormatVND(d.Price), cell, FormatVND(d.LineTotal()))
		fmt.Fprintf(&text, "- #%d x%d @ %s = %s\n", d.ProductID, d.Quantity, FormatVND(d.Price), FormatVND(d.LineTotal()))
	}

	html := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif;font-size:14px;color:#111">
  <h2 style="font-size:18px">Đặt hàng thành công</h2>
  <p>Mã đơn: <strong>%d</strong></p>
  <p>Phương thức: <strong>%s</strong></p>
  <table style="border-collapse:collapse;border:1px solid #ddd">
    <thead>
      <tr><th %s>Sản phẩm (ID)</th><th %s>SL</th><th %s>Giá</th><th %s>Thành tiền</th></tr>
    </thead>
    <tbody>%s</tbody>
    <tfoot>
      <tr><td colspan="3" %s><strong>Tổng</strong></td><td %s><strong>%s</strong></td></tr>
    </tfoot>
  </table>
  <p style="margin-top:10px">Cảm ơn bạn đã mua sắm tại Web Mobile!</p>
</div>`,
		order.ID, order.PaymentMethod,
		cell, cell, cell, cell,
		rows.String(),
		`style="padding:6px 8px;border:1px solid #ddd;text-align:right"`, cell, FormatVND(order.TotalPrice))

	plain := fmt.Sprintf("Đặt hàng thành công\n\nMã đơn: %d\nPhương thức: %s\n\n%s\nTổng: %s\n\nCảm ơn bạn đã mua sắm tại Web Mobile!\n",
		order.ID, order.PaymentMethod, text.String(), FormatVND(order.TotalPrice))

	return Message{
		Subject: fmt.Sprintf("Xác nhận đơn hàng #%d", order.ID),
		HTML:    html,
		Text:    plain,
	}
}

func orderSMS(order models.Order) string {
	return fmt.Sprintf("Web Mobile: don hang #%d da dat thanh cong. Tong: %s. Cam on ban!", order.ID, FormatVND(order.TotalPrice))
}

// FormatVND formats an amount the vi-VN way: "1.234.567 đ", with a comma
// before any non-zero fraction.
func FormatVND(v decimal.Decimal) string {
	v = v.Round(2)
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}

	whole := v.Truncate(0)
	digits := whole.String()
	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := sign + grouped.String()
	if frac := v.Sub(whole); !frac.IsZero() {
		out += "," + strings.TrimRight(strings.TrimPrefix(frac.StringFixed(2), "0."), "0")
	}
	return out + " đ"
}
