package hash

import (
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/rangeregistry/pkg/types"
)

func TestBlake256EmptyInput(t *testing.T) {
	hashService := NewHashService()
	defer hashService.Close()

	// 空输入的个性化哈希是公开的固定值
	assert.Equal(t,
		"0x44f4c69744d5f8c55d642062949dcae49bc4e7ef43d388c5a12f42b5633d163e",
		hashService.Blake256().Hex())
	assert.Equal(t, hashService.Blake256(), hashService.Blake256([]byte{}))
}

func TestBlake256Parts(t *testing.T) {
	hashService := NewHashService()
	defer hashService.Close()

	testCases := []struct {
		name  string
		parts [][]byte
	}{
		{"单段", [][]byte{[]byte("hello world")}},
		{"两段", [][]byte{[]byte("hello "), []byte("world")}},
		{"三段", [][]byte{[]byte("hel"), []byte("lo wo"), []byte("rld")}},
	}

	expected := hashService.Blake256([]byte("hello world"))
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, expected, hashService.Blake256(tc.parts...), "分段写入应等价于拼接")
		})
	}
}

func TestScriptHashCache(t *testing.T) {
	hashService := NewHashService()
	defer hashService.Close()

	script := &types.Script{
		CodeHash: types.BytesToHash([]byte{0x01, 0x02}),
		HashType: types.HashTypeType,
		Args:     []byte{0xaa, 0xbb},
	}

	first := hashService.ScriptHash(script)
	second := hashService.ScriptHash(script)
	assert.Equal(t, first, second)
	assert.Equal(t, hashService.Blake256(script.Serialize()), first)

	other := script.Clone()
	other.Args = []byte{0xaa}
	assert.NotEqual(t, first, hashService.ScriptHash(other))

	assert.True(t, hashService.ScriptHash(nil).IsZero())
}

func TestScriptHashWithoutCache(t *testing.T) {
	hashService := &HashService{}
	script := &types.Script{HashType: types.HashTypeData}
	assert.Equal(t, hashService.Blake256(script.Serialize()), hashService.ScriptHash(script))
	require.NoError(t, hashService.Close())
}

func TestInstanceID(t *testing.T) {
	hashService := NewHashService()
	defer hashService.Close()

	input := &types.CellInput{
		Since: 0,
		PreviousOutput: types.OutPoint{
			TxHash: types.BytesToHash([]byte{0x11}),
			Index:  3,
		},
	}

	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], 2)
	assert.Equal(t, hashService.Blake256(input.Serialize(), le[:]), hashService.InstanceID(input, 2))
	assert.NotEqual(t, hashService.InstanceID(input, 0), hashService.InstanceID(input, 1))

	// 不同的首个输入必然得到不同的标识
	otherInput := *input
	otherInput.PreviousOutput.Index = 4
	assert.NotEqual(t, hashService.InstanceID(input, 0), hashService.InstanceID(&otherInput, 0))
}

func TestTransactionHashIgnoresWitnesses(t *testing.T) {
	hashService := NewHashService()
	defer hashService.Close()

	tx := &types.Transaction{
		Outputs:     []types.CellOutput{{Capacity: 100, Lock: &types.Script{}}},
		OutputsData: []hexutil.Bytes{{0x01}},
	}
	withWitness := *tx
	withWitness.Witnesses = []hexutil.Bytes{{0xff}}

	assert.Equal(t, hashService.TransactionHash(tx), hashService.TransactionHash(&withWitness))
}
