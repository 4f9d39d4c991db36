package vault

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asAddresses(value interface{}) ([]common.Address, error) {
	v, ok := value.([]common.Address)
	if !ok {
		return nil, fmt.Errorf("unsupported address list type %T", value)
	}
	return append([]common.Address(nil), v...), nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asBigInts(value interface{}) ([]*big.Int, error) {
	v, ok := value.([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unsupported int list type %T", value)
	}
	out := make([]*big.Int, len(v))
	for i, item := range v {
		out[i] = new(big.Int).Set(item)
	}
	return out, nil
}

func asBool(value interface{}) (bool, error) {
	v, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("unsupported bool type %T", value)
	}
	return v, nil
}

func asUint8(value interface{}) (uint8, error) {
	v, ok := value.(uint8)
	if !ok {
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
	return v, nil
}

func formatAmounts(values []*big.Int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
