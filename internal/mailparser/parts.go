package mailparser

import (
	"regexp"
	"strings"
)

// Part 一个 multipart 片段：自身头部加尚未解码的正文。
type Part struct {
	Headers map[string]string
	Body    string
}

var boundaryPattern = regexp.MustCompile(`boundary="?([^";]+)"?`)

// ExtractBoundary 从 content-type 头中提取 multipart 边界标记。
// 没有声明边界时返回空串。
func ExtractBoundary(contentType string) string {
	m := boundaryPattern.FindStringSubmatch(contentType)
	if m == nil {
		return ""
	}
	return m[1]
}

// SplitParts 按字面边界标记切分原始载荷（流水线第一阶段，纯函数）。
//
// 丢弃结尾的 "--" 哨兵片段和空片段；找不到头部与正文之间空行
// 分隔的片段直接跳过，不报错。
func SplitParts(raw, boundary string) []Part {
	fragments := strings.Split(raw, "--"+boundary)
	parts := make([]Part, 0, len(fragments))
	for _, frag := range fragments {
		trimmed := strings.TrimSpace(frag)
		if trimmed == "" || trimmed == "--" {
			continue
		}
		headers, body, ok := splitHeadersBody(frag)
		if !ok {
			continue
		}
		parts = append(parts, Part{Headers: headers, Body: body})
	}
	return parts
}

// splitHeadersBody 在片段内定位头部与正文之间的空行分隔。
// CRLFCRLF 与 LFLF 都接受，取先出现者。
func splitHeadersBody(piece string) (map[string]string, string, bool) {
	sep, sepLen := -1, 0
	if i := strings.Index(piece, "\r\n\r\n"); i >= 0 {
		sep, sepLen = i, 4
	}
	if j := strings.Index(piece, "\n\n"); j >= 0 && (sep < 0 || j < sep) {
		sep, sepLen = j, 2
	}
	if sep < 0 {
		return nil, "", false
	}

	headers := ParseHeaderBlock(piece[:sep])
	body := piece[sep+sepLen:]
	// 去掉正文结尾紧贴下一个边界行的换行
	body = strings.TrimRight(body, "\r\n")
	return headers, body, true
}

// ParseHeaderBlock 把头部块解析为小写键 map，按每行第一个冒号切分。
// 不合法的行静默忽略。
func ParseHeaderBlock(block string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, "\r")
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		headers[key] = strings.TrimSpace(line[idx+1:])
	}
	return headers
}
