package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mailadmin/backend/internal/storage"
)

// FindRawBody 在日期分区表中查找原始报文。
//
// 候选分区按日期降序逐个参数化查询，首个命中即返回；扫完
// 全部候选仍未命中返回 ErrRawBodyNotFound。分区名未通过
// raw-YYYY-MM-DD 白名单的在枚举阶段就被剔除，绝不进入查询。
func (s *Store) FindRawBody(ctx context.Context, ref string) ([]byte, error) {
	partitions, err := s.listRawPartitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list raw partitions: %w", err)
	}
	storage.SortPartitionsNewestFirst(partitions)

	for _, partition := range partitions {
		query := fmt.Sprintf(
			"SELECT body FROM %s WHERE id = %s",
			s.quoteIdentifier(partition),
			s.placeholder(1),
		)

		var body []byte
		err := s.db.QueryRowContext(ctx, query, ref).Scan(&body)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("query partition %s: %w", partition, err)
		}

		s.log.Debug("raw body located",
			zap.String("partition", partition),
			zap.Int("bytes", len(body)),
		)
		return storage.DecompressIfZstd(body), nil
	}

	return nil, storage.ErrRawBodyNotFound
}

// listRawPartitions 枚举当前库中所有原始报文分区表。
// 名字不符合白名单的静默排除。
func (s *Store) listRawPartitions(ctx context.Context) ([]string, error) {
	var query string
	if s.driverName == "postgres" {
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name LIKE 'raw-%'`
	} else {
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_name LIKE 'raw-%'`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return storage.FilterPartitions(names), nil
}
