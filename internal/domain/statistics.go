package domain

// ScopeCounts 按方向分组的邮件计数。
type ScopeCounts struct {
	Incoming int64 `json:"incoming"`
	Outgoing int64 `json:"outgoing"`
}

// OverviewStats 三个固定滚动窗口的方向计数。
type OverviewStats struct {
	Last24h ScopeCounts `json:"last24h"`
	Last7d  ScopeCounts `json:"last7d"`
	AllTime ScopeCounts `json:"allTime"`
}

// MailboxStatus 邮箱活跃状态分类结果。
type MailboxStatus string

const (
	MailboxActive   MailboxStatus = "active"
	MailboxInactive MailboxStatus = "inactive"
)

// MailboxTotals 存储层返回的单邮箱原始统计行。
type MailboxTotals struct {
	Address      string `json:"address"`
	Incoming     int64  `json:"incoming"`
	Outgoing     int64  `json:"outgoing"`
	LastReceived *int64 `json:"lastReceived"`
}

// MailboxStats 单个邮箱的聚合统计视图。
type MailboxStats struct {
	Address            string        `json:"address"`
	Incoming           int64         `json:"incoming"`
	Outgoing           int64         `json:"outgoing"`
	Total              int64         `json:"total"`
	IncomingPercentage float64       `json:"incomingPercentage"`
	Status             MailboxStatus `json:"status"`
	LastReceived       *int64        `json:"lastReceived,omitempty"`
}
