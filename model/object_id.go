package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ObjectID is an index into one of the Root arrays.
type ObjectID uint32

// NullID marks an absent reference.
const NullID ObjectID = 0xFFFFFFFF

var (
	ErrNullReference = errors.New("model: null reference in required field")
	ErrUnknownToken  = errors.New("model: unknown wire token")
)

func (id ObjectID) IsNull() bool {
	return id == NullID
}

// IsZero reports whether the handle is absent. encoding/json uses it for omitzero fields.
func (id ObjectID) IsZero() bool {
	return id == NullID
}

// Index returns the array index, or -1 for NullID.
func (id ObjectID) Index() int {
	if id == NullID {
		return -1
	}
	return int(id)
}

// In reports whether id refers to an element of an array of length n.
func (id ObjectID) In(n int) bool {
	return id != NullID && int(id) < n
}

func (id ObjectID) String() string {
	if id == NullID {
		return "null"
	}
	return strconv.FormatUint(uint64(id), 10)
}

func (id ObjectID) MarshalJSON() ([]byte, error) {
	if id == NullID {
		return nil, ErrNullReference
	}
	return strconv.AppendUint(nil, uint64(id), 10), nil
}

func (id *ObjectID) UnmarshalJSON(data []byte) error {
	var v uint32
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("model: invalid object id %s: %w", data, err)
	}
	if ObjectID(v) == NullID {
		return fmt.Errorf("model: object id %d is reserved", v)
	}
	*id = ObjectID(v)
	return nil
}
