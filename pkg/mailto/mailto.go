// Package mailto 生成预填主题/正文的 mailto: 链接。
// 邮件并不由服务端发送，附件需由用户手动添加。
package mailto

import (
	"net/url"
	"strings"
)

// Link 生成 mailto 链接，多个收件人以逗号分隔
func Link(recipients []string, subject, body string) string {
	var b strings.Builder
	b.WriteString("mailto:")
	addrs := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			addrs = append(addrs, encodeAddr(r))
		}
	}
	b.WriteString(strings.Join(addrs, ","))

	var params []string
	if subject != "" {
		params = append(params, "subject="+Encode(subject))
	}
	if body != "" {
		params = append(params, "body="+Encode(body))
	}
	if len(params) > 0 {
		b.WriteString("?")
		b.WriteString(strings.Join(params, "&"))
	}
	return b.String()
}

// Encode 按 RFC 6068 编码（空格编码为 %20 而非 +）
func Encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// encodeAddr 编码收件人地址，"@" 保留原样，"?"、"&"、"%"、"," 等均被转义
func encodeAddr(addr string) string {
	return strings.ReplaceAll(Encode(addr), "%40", "@")
}
