package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

// Tables keeps every entity in a single Azure table. A logical key
// "<kind>:<rest>" maps to PartitionKey=<kind> and RowKey=<rest>, with the
// value's JSON payload in the Data column. Prefix scans translate to a
// partition equality filter plus a RowKey range, so an owner-prefixed scan
// touches only that owner's rows.
type Tables struct {
	table *aztables.Client
}

// NewTables creates a Tables store from the given connection string.
func NewTables(connStr, table string) (*Tables, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &Tables{table: svc.NewClient(table)}, nil
}

type kvEntity struct {
	aztables.Entity
	Data string `json:"Data"`
}

func (t *Tables) Get(ctx context.Context, key string, out any) error {
	pk, rk, err := splitKey(key)
	if err != nil {
		return err
	}
	resp, err := t.table.GetEntity(ctx, pk, rk, nil)
	if err != nil {
		if hasStatus(err, 404) {
			return ErrNotFound
		}
		return err
	}
	var ent kvEntity
	if err := json.Unmarshal(resp.Value, &ent); err != nil {
		return err
	}
	return json.Unmarshal([]byte(ent.Data), out)
}

func (t *Tables) Put(ctx context.Context, key string, value any) error {
	pk, rk, err := splitKey(key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	ent := kvEntity{
		Entity: aztables.Entity{PartitionKey: pk, RowKey: rk},
		Data:   string(data),
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	mode := aztables.UpdateModeReplace
	_, err = t.table.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{UpdateMode: mode})
	return err
}

func (t *Tables) Delete(ctx context.Context, key string) error {
	pk, rk, err := splitKey(key)
	if err != nil {
		return err
	}
	if _, err := t.table.DeleteEntity(ctx, pk, rk, nil); err != nil {
		// Deleting an absent key is a no-op.
		if hasStatus(err, 404) {
			return nil
		}
		return err
	}
	return nil
}

func (t *Tables) ScanPrefix(ctx context.Context, prefix string) ([]Record, error) {
	filter, pk, err := scanFilter(prefix)
	if err != nil {
		return nil, err
	}
	pager := t.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	records := []Record{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent kvEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			records = append(records, Record{Key: pk + ":" + ent.RowKey, Data: []byte(ent.Data)})
		}
	}
	return records, nil
}

// splitKey separates the kind segment from the rest of the key.
func splitKey(key string) (pk, rk string, err error) {
	kind, rest, found := strings.Cut(key, ":")
	if !found || kind == "" || rest == "" {
		return "", "", fmt.Errorf("malformed key %q", key)
	}
	return kind, rest, nil
}

// scanFilter builds the OData filter for a prefix scan and returns it with
// the partition (kind) segment of the prefix.
func scanFilter(prefix string) (filter, pk string, err error) {
	kind, rest, found := strings.Cut(prefix, ":")
	if !found || kind == "" {
		return "", "", fmt.Errorf("malformed scan prefix %q", prefix)
	}
	filter = "PartitionKey eq '" + escapeODataString(kind) + "'"
	if rest != "" {
		filter += " and RowKey ge '" + escapeODataString(rest) + "'"
		if upper := prefixUpperBound(rest); upper != "" {
			filter += " and RowKey lt '" + escapeODataString(upper) + "'"
		}
	}
	return filter, kind, nil
}

// prefixUpperBound returns the smallest string greater than every string
// starting with prefix, or "" when no such bound exists.
func prefixUpperBound(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}

func escapeODataString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func hasStatus(err error, status int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == status
}
