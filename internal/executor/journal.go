package executor

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/notcotrader/swap-engine/internal/domain"
)

const (
	IntentsBucket = "intents"

	DefaultJournalPath = "./data/swap-journal.db"
)

type IntentState string

const (
	// IntentPending is written before the first broadcast attempt.
	IntentPending IntentState = "pending"

	// IntentSubmitted means the transaction left for the network. From
	// here the swap is never rebuilt or resent.
	IntentSubmitted IntentState = "submitted"

	IntentConfirmed IntentState = "confirmed"
	IntentFailed    IntentState = "failed"

	// IntentUnknown marks a broadcast whose fate timed out. Only an
	// operator looking at the chain can settle it.
	IntentUnknown IntentState = "unknown"
)

// Intent kinds.
const (
	IntentKindSwap       = "swap"
	IntentKindWithdrawal = "withdrawal"
)

// Intent is the durable record of one swap or withdrawal attempt. It
// exists before any transaction is broadcast so a crash can never lose
// track of money in flight.
type Intent struct {
	Ref           string       `json:"ref"`
	Kind          string       `json:"kind,omitempty"`
	Chain         domain.Chain `json:"chain"`
	WalletAddress string       `json:"walletAddress"`
	Direction     string       `json:"direction,omitempty"`
	CounterAsset  string       `json:"counterAsset,omitempty"`
	ToAddress     string       `json:"toAddress,omitempty"`
	AmountRaw     uint64       `json:"amountRaw"`
	MinOutputRaw  uint64       `json:"minOutputRaw,omitempty"`

	State       IntentState `json:"state"`
	TxID        string      `json:"txId,omitempty"`
	ExplorerURL string      `json:"explorerUrl,omitempty"`

	OutputAmountRaw uint64 `json:"outputAmountRaw,omitempty"`
	GasConsumedRaw  uint64 `json:"gasConsumedRaw,omitempty"`
	GasKnown        bool   `json:"gasKnown"`
	Error           string `json:"error,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Journal persists submission intents in bolt.
type Journal struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func OpenJournal(dbPath string) (*Journal, error) {
	if dbPath == "" {
		dbPath = DefaultJournalPath
	}
	os.MkdirAll(filepath.Dir(dbPath), 0755)

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open journal at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[swapJournal] opened database")
	return &Journal{db: db, dbPath: dbPath}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func (j *Journal) Put(intent *Intent) error {
	intent.UpdatedAt = time.Now()
	data, err := sonic.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}
	return j.db.Set(IntentsBucket, []byte(intent.Ref), data)
}

func (j *Journal) Get(ref string) (*Intent, error) {
	data, err := j.db.List(IntentsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list intents: %w", err)
	}
	value, ok := data[ref]
	if !ok {
		return nil, fmt.Errorf("no intent %s", ref)
	}
	var intent Intent
	if err := sonic.Unmarshal(value, &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intent %s: %w", ref, err)
	}
	return &intent, nil
}

// Unsettled returns intents whose broadcast fate was never resolved,
// for operator review after a restart.
func (j *Journal) Unsettled() ([]*Intent, error) {
	data, err := j.db.List(IntentsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list intents: %w", err)
	}

	var out []*Intent
	for ref, value := range data {
		var intent Intent
		if err := sonic.Unmarshal(value, &intent); err != nil {
			log.Warn().Str("ref", ref).Err(err).Msg("[swapJournal] failed to unmarshal intent, skipping")
			continue
		}
		if intent.State == IntentSubmitted || intent.State == IntentUnknown {
			out = append(out, &intent)
		}
	}
	return out, nil
}

// NewRef mints a swap journal reference. Random, not sequential, so
// refs leak nothing about volume.
func NewRef() string {
	return newRef("swp")
}

// NewWithdrawalRef mints a withdrawal journal reference.
func NewWithdrawalRef() string {
	return newRef("wdr")
}

func newRef(prefix string) string {
	var b [8]byte
	rand.Read(b[:])
	return prefix + "_" + hex.EncodeToString(b[:])
}
