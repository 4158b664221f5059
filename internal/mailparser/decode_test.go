package mailparser

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailadmin/backend/internal/domain"
)

func TestDecodeQuotedPrintable(t *testing.T) {
	t.Run("十六进制转义", func(t *testing.T) {
		assert.Equal(t, "Hello World", decodeQuotedPrintable("Hello=20World"))
		assert.Equal(t, "café", decodeQuotedPrintable("caf=C3=A9"))
	})

	t.Run("软换行被移除", func(t *testing.T) {
		assert.Equal(t, "foobar", decodeQuotedPrintable("foo=\r\nbar"))
		assert.Equal(t, "foobar", decodeQuotedPrintable("foo=\nbar"))
	})

	t.Run("非法转义按字面保留", func(t *testing.T) {
		assert.Equal(t, "100=ZZ done", decodeQuotedPrintable("100=ZZ done"))
		assert.Equal(t, "trailing=", decodeQuotedPrintable("trailing="))
	})
}

func TestDecodeBase64(t *testing.T) {
	t.Run("标准解码", func(t *testing.T) {
		assert.Equal(t, "Hello", decodeBase64("SGVsbG8="))
	})

	t.Run("跨行空白被剥离", func(t *testing.T) {
		encoded := "SGVs\r\nbG8g\r\nV29y\r\nbGQ="
		assert.Equal(t, "Hello World", decodeBase64(encoded))
	})

	t.Run("解码失败时原样返回", func(t *testing.T) {
		assert.Equal(t, "not base64 at all!", decodeBase64("not base64 at all!"))
	})
}

func TestDecodePartBody(t *testing.T) {
	t.Run("未知编码原样返回", func(t *testing.T) {
		assert.Equal(t, "raw text", DecodePartBody("raw text", "7bit"))
		assert.Equal(t, "raw text", DecodePartBody("raw text", ""))
	})

	t.Run("编码名大小写不敏感", func(t *testing.T) {
		assert.Equal(t, "a b", DecodePartBody("a=20b", "Quoted-Printable"))
	})
}

func TestDecode(t *testing.T) {
	t.Run("multipart载荷提取纯文本与HTML", func(t *testing.T) {
		htmlB64 := base64.StdEncoding.EncodeToString([]byte("<p>パーティー</p>"))
		raw := "--frontier\r\n" +
			"Content-Type: text/plain; charset=utf-8\r\n" +
			"Content-Transfer-Encoding: quoted-printable\r\n" +
			"\r\n" +
			"Caf=C3=A9 invitation\r\n" +
			"--frontier\r\n" +
			"Content-Type: text/html; charset=utf-8\r\n" +
			"Content-Transfer-Encoding: base64\r\n" +
			"\r\n" +
			htmlB64 + "\r\n" +
			"--frontier--\r\n"

		headers := map[string]string{
			"content-type": `multipart/alternative; boundary="frontier"`,
		}

		body := Decode(raw, headers)
		require.NotNil(t, body.Text)
		require.NotNil(t, body.HTML)
		assert.Equal(t, "Café invitation", *body.Text)
		assert.Equal(t, "<p>パーティー</p>", *body.HTML)
		assert.Equal(t, domain.BodyFromRaw, body.Provenance)
	})

	t.Run("无边界时整段按纯文本解码", func(t *testing.T) {
		headers := map[string]string{
			"content-type":              "text/plain; charset=utf-8",
			"content-transfer-encoding": "quoted-printable",
		}

		body := Decode("Plain=20text=20only", headers)
		require.NotNil(t, body.Text)
		assert.Equal(t, "Plain text only", *body.Text)
		assert.Nil(t, body.HTML)
	})

	t.Run("同类型片段先到先得", func(t *testing.T) {
		raw := "--b\r\nContent-Type: text/plain\r\n\r\nfirst\r\n" +
			"--b\r\nContent-Type: text/plain\r\n\r\nsecond\r\n" +
			"--b--"

		body := Decode(raw, map[string]string{"content-type": `multipart/mixed; boundary="b"`})
		require.NotNil(t, body.Text)
		assert.Equal(t, "first", *body.Text)
	})

	t.Run("无文本片段时整段兜底", func(t *testing.T) {
		raw := "--b\r\nContent-Type: application/octet-stream\r\n\r\nbinary blob\r\n--b--"

		body := Decode(raw, map[string]string{"content-type": `multipart/mixed; boundary="b"`})
		require.NotNil(t, body.Text)
		assert.Equal(t, raw, *body.Text)
		assert.Nil(t, body.HTML)
	})

	t.Run("声明的边界在载荷中不存在", func(t *testing.T) {
		raw := "just a flat body"

		body := Decode(raw, map[string]string{"content-type": `multipart/mixed; boundary="missing"`})
		require.NotNil(t, body.Text)
		assert.Equal(t, raw, *body.Text)
	})
}

func TestNormalizeUTF8(t *testing.T) {
	t.Run("GBK正文转码", func(t *testing.T) {
		// "你好" 的 GBK 字节序列
		gbk := string([]byte{0xc4, 0xe3, 0xba, 0xc3})
		assert.Equal(t, "你好", normalizeUTF8(gbk, `text/plain; charset="gbk"`))
	})

	t.Run("非法字节被替换", func(t *testing.T) {
		out := normalizeUTF8("ok\xffbad", "text/plain; charset=utf-8")
		assert.Equal(t, "ok�bad", out)
	})

	t.Run("未知字符集只做UTF-8清洗", func(t *testing.T) {
		assert.Equal(t, "plain", normalizeUTF8("plain", "text/plain; charset=x-unknown"))
	})
}
