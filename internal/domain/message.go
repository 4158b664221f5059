package domain

// Scope 表示邮件方向。
type Scope string

const (
	// ScopeIncoming 入站邮件
	ScopeIncoming Scope = "incoming"
	// ScopeOutgoing 出站邮件
	ScopeOutgoing Scope = "outgoing"
)

// Message 表示投递引擎存储中的一条结构化邮件记录。
//
// 该记录由上游引擎写入，本服务只读。Text/HTML 是引擎侧可能预先
// 存好的结构化正文；RawBodyRef 指向日期分区中的原始报文。
type Message struct {
	ID         string  `json:"id" gorm:"column:id"`
	Scope      Scope   `json:"scope" gorm:"column:scope"`
	Mailbox    string  `json:"mailbox" gorm:"column:mailbox"`
	Subject    string  `json:"subject" gorm:"column:subject"`
	Timestamp  *int64  `json:"timestamp" gorm:"column:timestamp"`
	Status     string  `json:"status" gorm:"column:status"`
	RawBodyRef *string `json:"rawBodyRef,omitempty" gorm:"column:raw_body_ref"`
	Text       *string `json:"text,omitempty" gorm:"column:text_body"`
	HTML       *string `json:"html,omitempty" gorm:"column:html_body"`
	// RawHeaders 引擎存储的报文头（JSON 对象，部署差异下可能为空）
	RawHeaders string `json:"-" gorm:"column:headers"`
	// Headers 解析后的小写键报文头，由存储层填充，不入库
	Headers map[string]string `json:"-" gorm:"-"`
}

// HasStructuredBody 判断记录是否已带结构化正文。
// 结构化正文存在时完全跳过原始报文重建。
func (m *Message) HasStructuredBody() bool {
	return (m.Text != nil && *m.Text != "") || (m.HTML != nil && *m.HTML != "")
}

// BodyProvenance 标记正文的来源。
type BodyProvenance string

const (
	// BodyFromStructured 正文来自引擎预存的结构化字段
	BodyFromStructured BodyProvenance = "structured"
	// BodyFromRaw 正文由原始报文解码重建
	BodyFromRaw BodyProvenance = "reconstructed"
	// BodyNone 找不到任何正文来源
	BodyNone BodyProvenance = "none"
)

// DecodedBody 表示解码后的邮件正文。
// 每次请求重新生成，不做缓存。
type DecodedBody struct {
	Text       *string        `json:"text"`
	HTML       *string        `json:"html"`
	Provenance BodyProvenance `json:"provenance"`
}

// MessageView 是返回给管理前端的完整邮件视图。
//
// TextBody/HTMLBody 原样透出解码结果；HTML 的净化是展示层的
// 强制职责，本服务不做任何 sanitize。
type MessageView struct {
	ID         string         `json:"id"`
	Scope      Scope          `json:"scope"`
	Mailbox    string         `json:"mailbox"`
	Subject    string         `json:"subject"`
	Timestamp  *int64         `json:"timestamp"`
	Status     string         `json:"status"`
	TextBody   *string        `json:"textBody"`
	HTMLBody   *string        `json:"htmlBody"`
	BodySource BodyProvenance `json:"bodySource"`
}
