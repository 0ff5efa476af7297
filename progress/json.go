package progress

import "gorm.io/datatypes"

func newJSON[T any](v T) datatypes.JSONType[T] {
	return datatypes.NewJSONType(v)
}
