package model

import "encoding/json"

// Optional はJSONの部分更新ペイロードにおける三値状態を表すラッパー。
// キーが存在しない（Set=false）、キーはあるが値がnull（Set=true, Valid=false）、
// 値あり（Set=true, Valid=true）を区別する。
// encoding/jsonはキーが存在する場合のみUnmarshalJSONを呼ぶため、
// ゼロ値のOptionalは「未指定」を意味する。
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON はjson.Marshalerを実装する。
// 未指定または nullの場合はnullを出力する。
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Some は値ありのOptionalを生成する。テストおよびパッチ構築用。
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null はキーありnullのOptionalを生成する。テスト用。
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Valid: false}
}
