package state

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/bitfsorg/fairburn-go/feesplit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func TestSerializeRoundTrip(t *testing.T) {
	for _, bps := range []uint64{0, 1, 5000, 10000, 1 << 40} {
		cfg := &Config{FeeRate: feesplit.RateFromBasisPoints(bps)}
		data, err := Serialize(cfg)
		require.NoError(t, err)
		assert.Len(t, data, 9)
		assert.Equal(t, byte(1), data[0])

		got, err := Deserialize(data)
		require.NoError(t, err)
		assert.Equal(t, bps, got.FeeRate.BasisPoints())
	}
}

func TestSerialize_Nil(t *testing.T) {
	_, err := Serialize(nil)
	assert.ErrorIs(t, err, ErrNilParam)
}

func TestDeserialize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte{1, 0, 0}},
		{"long", make([]byte, 10)},
		{"bad version", []byte{2, 0, 0, 0, 0, 0, 0, 0x13, 0x88}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize(tt.data)
			assert.ErrorIs(t, err, ErrInvalidConfigData)
		})
	}
}

// storeFactories runs the same behaviour checks against every Store.
func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"mem": func() Store { return NewMemStore() },
		"bolt": func() Store {
			s, err := OpenBoltStore(filepath.Join(t.TempDir(), "state.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStore_Behaviour(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()

			_, err := s.LoadConfig()
			assert.ErrorIs(t, err, ErrConfigNotFound)

			require.NoError(t, s.SaveConfig(&Config{FeeRate: feesplit.RateFromBasisPoints(5000)}))
			got, err := s.LoadConfig()
			require.NoError(t, err)
			assert.Equal(t, uint64(5000), got.FeeRate.BasisPoints())

			require.NoError(t, s.SaveConfig(&Config{FeeRate: feesplit.RateFromBasisPoints(250)}))
			got, err = s.LoadConfig()
			require.NoError(t, err)
			assert.Equal(t, uint64(250), got.FeeRate.BasisPoints())

			assert.ErrorIs(t, s.SaveConfig(nil), ErrNilParam)
		})
	}
}

func TestMemStore_ReturnsCopies(t *testing.T) {
	s := NewMemStore()
	cfg := &Config{FeeRate: feesplit.RateFromBasisPoints(100)}
	require.NoError(t, s.SaveConfig(cfg))

	cfg.FeeRate = feesplit.RateFromBasisPoints(9000)
	got, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.FeeRate.BasisPoints())
}

func TestMemStore_Concurrent(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.SaveConfig(&Config{}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.SaveConfig(&Config{FeeRate: feesplit.RateFromBasisPoints(uint64(i))})
			_, _ = s.LoadConfig()
		}(i)
	}
	wg.Wait()

	_, err := s.LoadConfig()
	assert.NoError(t, err)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveConfig(&Config{FeeRate: feesplit.RateFromBasisPoints(4200)}))
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(4200), got.FeeRate.BasisPoints())
}

func TestBoltStore_CorruptRecord(t *testing.T) {
	s, err := OpenBoltStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketConfig).Put(keyConfig, []byte{9, 9})
	}))
	_, err = s.LoadConfig()
	assert.ErrorIs(t, err, ErrInvalidConfigData)
}
