package ledger

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lt "blockScope/internal/ledger/ledgertest"
	"blockScope/internal/model"
)

func TestDecodeBlockEraDispatch(t *testing.T) {
	tests := []struct {
		tag     uint64
		era     model.Era
		babbage bool
	}{
		{2, model.EraShelley, false},
		{3, model.EraAllegra, false},
		{4, model.EraMary, false},
		{5, model.EraAlonzo, false},
		{6, model.EraBabbage, true},
		{7, model.EraConway, true},
	}
	for _, tt := range tests {
		t.Run(tt.era.String(), func(t *testing.T) {
			b := lt.Block{EraTag: tt.tag, Number: 10, Slot: 99, WithInvalid: tt.babbage || tt.tag == 5,
				Txs: []lt.Tx{{Body: lt.SimpleBody(170_000)}}}
			era, block, err := DecodeBlock(b.Envelope())
			require.NoError(t, err)
			assert.Equal(t, tt.era, era)
			if tt.babbage {
				assert.IsType(t, &BabbageBlock{}, block)
			} else {
				assert.IsType(t, &AlonzoBlock{}, block)
			}
			assert.Equal(t, 1, block.TxCount())
			assert.Equal(t, uint64(10), block.HeaderBody().BlockNumber)
			assert.Equal(t, uint64(99), block.HeaderBody().Slot)
		})
	}
}

func TestDecodeBlockUnsupportedEra(t *testing.T) {
	for _, tag := range []uint64{0, 1, 8, 42} {
		raw := lt.MustMarshal([]any{tag, []any{}})
		_, _, err := DecodeBlock(raw)
		assert.ErrorIs(t, err, ErrUnsupportedEra, "tag %d", tag)
	}
}

func TestDecodeBlockMalformed(t *testing.T) {
	txs := []lt.Tx{{Body: lt.SimpleBody(1)}}
	good := lt.Block{EraTag: 6, WithInvalid: true, Txs: txs}.Envelope()
	noInvalid := lt.Block{EraTag: 6, Txs: txs}.Envelope()

	tests := map[string][]byte{
		"empty":           {},
		"truncated":       good[:len(good)/2],
		"not array":       lt.MustMarshal("block"),
		"short block":     lt.MustMarshal([]any{uint64(6), []any{uint64(1), uint64(2), uint64(3)}}),
		"missing invalid": noInvalid,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeBlock(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestBlockAndTransactionHashes(t *testing.T) {
	body := lt.SimpleBody(200_000)
	b := lt.Block{EraTag: 5, WithInvalid: true, Txs: []lt.Tx{{Body: body}}}

	_, block, err := DecodeBlock(b.Envelope())
	require.NoError(t, err)
	alonzo := block.(*AlonzoBlock)

	assert.Equal(t, Hash256(b.Header()), block.Hash())
	assert.Len(t, block.Hash(), 32)
	assert.Equal(t, lt.MustMarshal(body), alonzo.TransactionBodies[0].Raw())
	assert.Equal(t, uint64(200_000), alonzo.TransactionBodies[0].Value.Fee)
}

func TestHeaderBodyLayouts(t *testing.T) {
	legacy := lt.Block{EraTag: 2, LegacyHeader: true, Number: 7}
	_, block, err := DecodeBlock(legacy.Envelope())
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), block.HeaderBody().BlockBodySize)
	assert.Equal(t, uint64(7), block.HeaderBody().BlockNumber)
	assert.Equal(t, lt.Hash32(0xa3), block.HeaderBody().BlockBodyHash)

	modern := lt.Block{EraTag: 6, WithInvalid: true, Number: 8}
	_, block, err = DecodeBlock(modern.Envelope())
	require.NoError(t, err)
	assert.Equal(t, uint64(2048), block.HeaderBody().BlockBodySize)
	assert.Equal(t, lt.Bytes(0xa1, 32), block.HeaderBody().IssuerVkey)
}

func TestBabbageOutputForms(t *testing.T) {
	datum := []any{uint64(42), lt.Bytes(0xbe, 2)}
	native := []any{uint64(0), lt.Hash28(0x44)}
	body := lt.Map{
		{K: uint64(0), V: lt.Set(lt.Input(lt.Hash32(1), 0))},
		{K: uint64(1), V: []any{
			[]any{lt.ShelleyAddress(), uint64(5), lt.Hash32(0xdd)},
			lt.Map{
				{K: uint64(0), V: lt.ShelleyAddress()},
				{K: uint64(1), V: []any{uint64(7), lt.Map{{K: lt.Hash28(0x50), V: lt.Map{{K: []byte("tok"), V: uint64(3)}}}}}},
				{K: uint64(2), V: []any{uint64(1), lt.Embedded(datum)}},
				{K: uint64(3), V: lt.Embedded([]any{uint64(0), native})},
			},
		}},
		{K: uint64(2), V: uint64(10)},
		{K: uint64(16), V: []any{lt.ShelleyAddress(), uint64(9)}},
		{K: uint64(17), V: uint64(11)},
	}
	var decoded BabbageTransactionBody
	require.NoError(t, cbor.Unmarshal(lt.MustMarshal(body), &decoded))
	require.Len(t, decoded.Outputs, 2)

	legacy := decoded.Outputs[0]
	require.NotNil(t, legacy.Legacy)
	assert.Equal(t, lt.Hash32(0xdd), legacy.Legacy.DatumHash)
	assert.Equal(t, lt.ShelleyAddress(), legacy.Address())

	post := decoded.Outputs[1].PostAlonzo
	require.NotNil(t, post)
	assert.Equal(t, uint64(7), post.Amount.Coin)
	assert.Equal(t, 1, post.Amount.Assets.Len())
	require.NotNil(t, post.DatumOption)
	require.NotNil(t, post.DatumOption.Inline)
	assert.Equal(t, Hash256(lt.MustMarshal(datum)), post.DatumOption.Hash)
	require.NotNil(t, post.ScriptRef)
	require.NotNil(t, post.ScriptRef.Native)
	assert.Equal(t, Hash224([]byte{0}, lt.MustMarshal(native)), post.ScriptRef.Native.Hash())

	require.NotNil(t, decoded.CollateralReturn)
	assert.Equal(t, uint64(9), decoded.CollateralReturn.Legacy.Amount.Coin)
	require.NotNil(t, decoded.TotalCollateral)
	assert.Equal(t, uint64(11), *decoded.TotalCollateral)
	require.Len(t, decoded.Inputs, 1)
}

func TestRedeemerEncodings(t *testing.T) {
	arrayForm := []any{
		[]any{uint64(0), uint64(1), uint64(5), []any{uint64(100), uint64(200)}},
		[]any{uint64(1), uint64(0), []any{}, []any{uint64(3), uint64(4)}},
	}
	mapForm := lt.Map{
		{K: []any{uint64(0), uint64(1)}, V: []any{uint64(5), []any{uint64(100), uint64(200)}}},
		{K: []any{uint64(5), uint64(2)}, V: []any{[]byte{1}, []any{uint64(3), uint64(4)}}},
	}

	var fromArray, fromMap Redeemers
	require.NoError(t, cbor.Unmarshal(lt.MustMarshal(arrayForm), &fromArray))
	require.NoError(t, cbor.Unmarshal(lt.MustMarshal(mapForm), &fromMap))

	require.Len(t, fromArray, 2)
	assert.Equal(t, RedeemerSpend, fromArray[0].Tag)
	assert.Equal(t, uint32(1), fromArray[0].Index)
	assert.Equal(t, uint32(100), fromArray[0].ExUnits.Mem)
	assert.Equal(t, uint64(200), fromArray[0].ExUnits.Steps)
	assert.Equal(t, "mint", fromArray[1].Tag.String())

	require.Len(t, fromMap, 2)
	assert.Equal(t, fromArray[0].Index, fromMap[0].Index)
	assert.Equal(t, "proposing", fromMap[1].Tag.String())
	assert.Equal(t, uint32(2), fromMap[1].Index)
}

func TestMultiassetKeepsEncodingOrder(t *testing.T) {
	mint := lt.Map{
		{K: lt.Hash28(0x09), V: lt.Map{{K: []byte("zz"), V: int64(-5)}, {K: []byte("aa"), V: int64(1)}}},
		{K: lt.Hash28(0x01), V: lt.Map{{K: []byte("mm"), V: int64(2)}}},
	}
	var m Multiasset[int64]
	require.NoError(t, cbor.Unmarshal(lt.MustMarshal(mint), &m))
	require.Len(t, m, 2)
	assert.Equal(t, lt.Hash28(0x09), m[0].Policy)
	assert.Equal(t, []byte("zz"), m[0].Assets[0].Name)
	assert.Equal(t, int64(-5), m[0].Assets[0].Quantity)
	assert.Equal(t, []byte("aa"), m[0].Assets[1].Name)
	assert.Equal(t, 3, m.Len())
}

func TestAuxiliaryDataEncodings(t *testing.T) {
	md := lt.Map{{K: uint64(674), V: lt.Map{{K: "msg", V: []any{"hello"}}}}, {K: uint64(1), V: int64(-3)}}
	script := []any{uint64(5), uint64(1000)}

	tests := []struct {
		name    string
		enc     any
		scripts int
		plutus  int
	}{
		{"bare map", md, 0, 0},
		{"array", []any{md, []any{script}}, 1, 0},
		{"tagged map", cbor.Tag{Number: 259, Content: lt.Map{
			{K: uint64(0), V: md},
			{K: uint64(1), V: []any{script}},
			{K: uint64(3), V: [][]byte{{0x4e, 0x4d}}},
		}}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var aux AuxiliaryData
			require.NoError(t, cbor.Unmarshal(lt.MustMarshal(tt.enc), &aux))
			require.Len(t, aux.Metadata, 2)
			assert.Equal(t, uint64(674), aux.Metadata[0].Label)
			assert.Equal(t, MetaMap, aux.Metadata[0].Value.Kind)
			assert.Equal(t, "-3", aux.Metadata[1].Value.Int.String())
			assert.Len(t, aux.NativeScripts, tt.scripts)
			assert.Len(t, aux.PlutusScripts(), tt.plutus)
			if tt.plutus > 0 {
				assert.Equal(t, uint8(2), aux.PlutusScripts()[0].Version)
			}
		})
	}
}

func TestCertificateKindsDecode(t *testing.T) {
	encodings := lt.Certificates()
	poolReg := lt.PoolRegistration()
	cred := lt.Credential(1)

	for _, kind := range AllCertificateKinds() {
		enc, ok := encodings[uint64(kind)]
		require.True(t, ok, "no fixture for certificate kind %d", kind)
		var c Certificate
		require.NoError(t, cbor.Unmarshal(lt.MustMarshal(enc), &c), "kind %d", kind)
		assert.Equal(t, kind, c.Kind)
	}

	var reg Certificate
	require.NoError(t, cbor.Unmarshal(lt.MustMarshal(poolReg), &reg))
	assert.Equal(t, Rational{Numerator: 1, Denominator: 50}, reg.Pool.Margin)
	require.Len(t, reg.Pool.Relays, 3)
	assert.Equal(t, uint32(3001), *reg.Pool.Relays[0].Port)
	assert.Nil(t, reg.Pool.Relays[0].IPv6)
	assert.Nil(t, reg.Pool.Relays[1].Port)
	assert.Equal(t, "srv.example.org", reg.Pool.Relays[2].DNS)
	require.NotNil(t, reg.Pool.Metadata)
	assert.Equal(t, "https://pool.example", reg.Pool.Metadata.URL)

	var mir Certificate
	require.NoError(t, cbor.Unmarshal(lt.MustMarshal(encodings[uint64(CertMoveInstantaneousRewards)]), &mir))
	assert.Equal(t, RewardSourceTreasury, mir.Reward.Source)
	require.Len(t, mir.Reward.Targets, 1)
	assert.Equal(t, int64(-20), mir.Reward.Targets[0].Amount)

	var bad Certificate
	err := cbor.Unmarshal(lt.MustMarshal([]any{uint64(19), cred}), &bad)
	assert.ErrorIs(t, err, ErrMalformed)
	err = cbor.Unmarshal(lt.MustMarshal([]any{uint64(2), cred}), &bad)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestPlutusDataJSON(t *testing.T) {
	big := cbor.Tag{Number: 2, Content: []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}}
	datum := cbor.Tag{Number: 122, Content: []any{
		uint64(1),
		int64(-7),
		[]byte{0xca, 0xfe},
		lt.Map{{K: []byte{1}, V: []any{big}}},
		cbor.Tag{Number: 1280, Content: []any{}},
		cbor.Tag{Number: 102, Content: []any{uint64(200), []any{uint64(0)}}},
	}}
	var pd PlutusData
	raw := lt.MustMarshal(datum)
	require.NoError(t, cbor.Unmarshal(raw, &pd))
	assert.Equal(t, raw, pd.Raw())
	assert.Equal(t, Hash256(raw), pd.Hash())

	b, err := json.Marshal(pd)
	require.NoError(t, err)
	assert.JSONEq(t, `{"constructor":1,"fields":[
		{"int":1},
		{"int":-7},
		{"bytes":"cafe"},
		{"map":[{"k":{"bytes":"01"},"v":{"list":[{"int":18446744073709551616}]}}]},
		{"constructor":7,"fields":[]},
		{"constructor":200,"fields":[{"int":0}]}
	]}`, string(b))
}

func TestNativeScriptJSONAndHash(t *testing.T) {
	enc := []any{uint64(3), uint64(2), []any{
		[]any{uint64(0), lt.Hash28(0xaa)},
		[]any{uint64(4), uint64(100)},
		[]any{uint64(1), []any{[]any{uint64(5), uint64(200)}}},
	}}
	raw := lt.MustMarshal(enc)
	var s NativeScript
	require.NoError(t, cbor.Unmarshal(raw, &s))
	assert.Equal(t, raw, s.Raw())
	assert.Equal(t, Hash224([]byte{0}, raw), s.Hash())
	assert.Len(t, s.Hash(), 28)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"atLeast","required":2,"scripts":[
		{"type":"sig","keyHash":"`+strings.Repeat("aa", 28)+`"},
		{"type":"after","slot":100},
		{"type":"all","scripts":[{"type":"before","slot":200}]}
	]}`, string(b))
}

func TestPlutusScriptHashPrefix(t *testing.T) {
	code := []byte{0x4e, 0x4d, 0x01, 0x00}
	v1 := PlutusScript{Version: 1, Code: code}
	v2 := PlutusScript{Version: 2, Code: code}
	assert.Equal(t, Hash224([]byte{1}, code), v1.Hash())
	assert.NotEqual(t, v1.Hash(), v2.Hash())
}
