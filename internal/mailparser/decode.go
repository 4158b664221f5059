package mailparser

import (
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"mailadmin/backend/internal/domain"
)

// Decode 把原始报文重建为正文（流水线第二阶段入口）。
//
// headers 是消息级别的小写键报文头。解码对畸形输入永不报错：
// 任何无法按 MIME 规则处理的载荷都降级为整段纯文本。
func Decode(raw string, headers map[string]string) domain.DecodedBody {
	boundary := ExtractBoundary(headers["content-type"])
	if boundary == "" {
		return plainFallback(raw, headers)
	}

	var text, html *string
	for _, part := range SplitParts(raw, boundary) {
		body := DecodePartBody(part.Body, part.Headers["content-transfer-encoding"])
		body = normalizeUTF8(body, part.Headers["content-type"])

		contentType := strings.ToLower(part.Headers["content-type"])
		switch {
		case strings.Contains(contentType, "text/plain") && text == nil:
			text = &body
		case strings.Contains(contentType, "text/html") && html == nil:
			html = &body
		}
	}

	// 扫完所有片段仍一无所获：整段载荷按纯文本兜底
	if text == nil && html == nil {
		return plainFallback(raw, headers)
	}

	return domain.DecodedBody{Text: text, HTML: html, Provenance: domain.BodyFromRaw}
}

// plainFallback 把整段载荷当作纯文本，按消息级传输编码解码。
func plainFallback(raw string, headers map[string]string) domain.DecodedBody {
	body := DecodePartBody(raw, headers["content-transfer-encoding"])
	body = normalizeUTF8(body, headers["content-type"])
	return domain.DecodedBody{Text: &body, HTML: nil, Provenance: domain.BodyFromRaw}
}

// DecodePartBody 按片段自身的 content-transfer-encoding 解码正文。
// 未知编码原样返回。
func DecodePartBody(body, transferEncoding string) string {
	enc := strings.ToLower(transferEncoding)
	switch {
	case strings.Contains(enc, "quoted-printable"):
		return decodeQuotedPrintable(body)
	case strings.Contains(enc, "base64"):
		return decodeBase64(body)
	}
	return body
}

var (
	softBreakPattern = regexp.MustCompile(`=(\r\n|\n|\r)`)
	hexEscapePattern = regexp.MustCompile(`=([0-9A-Fa-f]{2})`)
)

// decodeQuotedPrintable 宽容版 quoted-printable 解码。
//
// 先去掉 "=" 紧跟行尾的软换行，再把每个 =HH 换成对应字节。
// 非法的 =XY（非十六进制）不匹配模式，按字面保留而不是报错。
func decodeQuotedPrintable(s string) string {
	s = softBreakPattern.ReplaceAllString(s, "")
	return hexEscapePattern.ReplaceAllStringFunc(s, func(m string) string {
		b, err := hex.DecodeString(m[1:])
		if err != nil {
			return m
		}
		return string(b)
	})
}

// decodeBase64 宽容版 base64 解码：先剥掉所有空白。
// 解码失败时把载荷当作已解码文本原样返回。
func decodeBase64(s string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	decoded, err := base64.StdEncoding.DecodeString(stripped)
	if err != nil {
		return s
	}
	return string(decoded)
}

var charsetPattern = regexp.MustCompile(`charset="?([^";]+)"?`)

// normalizeUTF8 把正文统一转成合法 UTF-8。
// 声明了已知字符集的先转码，非法字节序列一律替换，永不失败。
func normalizeUTF8(s, contentType string) string {
	if m := charsetPattern.FindStringSubmatch(strings.ToLower(contentType)); m != nil {
		if enc := charsetEncoding(m[1]); enc != nil {
			if converted, _, err := transform.String(enc.NewDecoder(), s); err == nil {
				s = converted
			}
		}
	}
	return strings.ToValidUTF8(s, "�")
}

// charsetEncoding 根据字符集名称返回解码器。
func charsetEncoding(charset string) encoding.Encoding {
	switch charset {
	case "gb2312", "gbk", "gb18030":
		return simplifiedchinese.GBK
	case "big5":
		return traditionalchinese.Big5
	case "shift_jis", "shift-jis":
		return japanese.ShiftJIS
	case "iso-2022-jp":
		return japanese.ISO2022JP
	case "euc-jp":
		return japanese.EUCJP
	case "euc-kr", "ks_c_5601-1987":
		return korean.EUCKR
	default:
		return nil
	}
}
