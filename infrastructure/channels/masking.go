package channels

import "strings"

// MaskPhone hides the middle of a phone number for log output.
// "+12345557890" becomes "+123***7890"; anything too short to mask
// meaningfully becomes "***".
func MaskPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) <= 6 {
		return "***"
	}
	return phone[:4] + "***" + phone[len(phone)-4:]
}
