package rooms

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	txMaxRetries    = 3
	txRetryInterval = 50 * time.Millisecond
)

// runTx は複数ステップの部屋操作を1つのトランザクションとして実行します。
// 同じ部屋に対する同時操作を直列化するため、PostgreSQLでは分離レベルを
// SERIALIZABLE に引き上げます（SQLiteは常に直列化可能のため指定不要）。
// シリアライズ失敗とデッドロックだけを一時的な障害として限度付きで
// 再試行し、業務上の結果は決して再試行しません。
func runTx(db *gorm.DB, logger *zap.Logger, fc func(tx *gorm.DB) error) error {
	var opts []*sql.TxOptions
	if db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	var err error
	for i := 0; i <= txMaxRetries; i++ {
		err = db.Transaction(fc, opts...)
		if err == nil || !isRetryable(err) {
			return err
		}
		logger.Warn("Transaction conflict, retrying", zap.Int("retry", i), zap.Error(err))
		time.Sleep(txRetryInterval << uint(i))
	}
	return err
}

// 40001: serialization_failure, 40P01: deadlock_detected,
// クラス08: connection_exception
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01" ||
			strings.HasPrefix(pgErr.Code, "08")
	}
	// サーバーに届く前に接続が落ちたリクエスト
	return pgconn.SafeToRetry(err)
}
