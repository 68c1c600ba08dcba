package documents

import (
	"context"

	"cloud.google.com/go/firestore"
)

type txKey struct{}

func withTx(ctx context.Context, tx *firestore.Transaction) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func getTx(ctx context.Context) (*firestore.Transaction, bool) {
	tx, ok := ctx.Value(txKey{}).(*firestore.Transaction)
	return tx, ok
}

// TxManager выполняет функции внутри транзакции Firestore
// Firestore сам повторяет транзакцию при конкурентном изменении прочитанных документов
type TxManager struct {
	client *firestore.Client
}

// NewTxManager создает менеджер транзакций Firestore
func NewTxManager(client *firestore.Client) *TxManager {
	return &TxManager{client: client}
}

// DoSerializable выполняет fn в транзакции; вложенный вызов переиспользует текущую
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения (согласованный снимок без блокировок)
func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn, firestore.ReadOnly)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error, opts ...firestore.TransactionOption) error {
	if _, ok := getTx(ctx); ok {
		return fn(ctx)
	}
	return m.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(withTx(ctx, tx))
	}, opts...)
}
