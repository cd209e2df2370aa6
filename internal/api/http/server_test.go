package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/rangeregistry/internal/app/version"
	apiconfig "github.com/weisyn/rangeregistry/internal/config/api"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/rangeregistry/internal/core/infrastructure/writegate"
	"github.com/weisyn/rangeregistry/internal/core/tx/verifier"
	"github.com/weisyn/rangeregistry/pkg/interfaces/persistence"
	"github.com/weisyn/rangeregistry/pkg/types"
)

var stubHash = types.BytesToHash([]byte{0xaa, 0xbb})

// stubLedger 按预设结果响应的账本
type stubLedger struct {
	verifyErr error
	submitErr error
	cells     []*types.CellMeta
	submitted int
}

func (l *stubLedger) Resolve(context.Context, *types.Transaction) (*types.ResolvedTransaction, error) {
	return nil, fmt.Errorf("not used")
}

func (l *stubLedger) Verify(context.Context, *types.Transaction) (types.Hash, error) {
	return stubHash, l.verifyErr
}

func (l *stubLedger) Submit(context.Context, *types.Transaction) (types.Hash, error) {
	l.submitted++
	return stubHash, l.submitErr
}

func (l *stubLedger) Genesis(context.Context, []types.CellOutput, [][]byte) (types.Hash, error) {
	return types.Hash{}, fmt.Errorf("not used")
}

func (l *stubLedger) GetCell(_ context.Context, op types.OutPoint) (*types.CellMeta, error) {
	for _, cell := range l.cells {
		if cell.OutPoint == op {
			return cell, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", persistence.ErrUnknownOutPoint, op)
}

func (l *stubLedger) ListCells(context.Context) ([]*types.CellMeta, error) {
	return l.cells, nil
}

type staticPrograms []string

func (p staticPrograms) Programs() []string { return p }

type testServer struct {
	server   *Server
	ledger   *stubLedger
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, configure func(*apiconfig.HTTPConfig)) *testServer {
	t.Helper()
	options := apiconfig.New(nil).GetOptions().HTTP
	options.GinMode = "test"
	if configure != nil {
		configure(&options)
	}
	ledger := &stubLedger{}
	registry := prometheus.NewRegistry()
	server := NewServer(ServerDeps{
		Options:  &options,
		Ledger:   ledger,
		Hasher:   hash.NewHashService(),
		Gate:     writegate.New(),
		Programs: staticPrograms{"always_success", "range_registry"},
		Registry: registry,
	})
	return &testServer{server: server, ledger: ledger, registry: registry}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.server.Router().ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if strings.Contains(rec.Header().Get("Content-Type"), "json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}
	return rec, decoded
}

func sampleTx() *types.Transaction {
	return &types.Transaction{
		Inputs: []types.CellInput{{PreviousOutput: types.OutPoint{TxHash: types.BytesToHash([]byte{0x01})}}},
		Outputs: []types.CellOutput{{
			Capacity: 100,
			Lock:     &types.Script{CodeHash: types.BytesToHash([]byte{0x02}), HashType: types.HashTypeData, Args: []byte{1}},
		}},
		OutputsData: []hexutil.Bytes{nil},
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec, body := s.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, []interface{}{"always_success", "range_registry"}, body["programs"])
	assert.Equal(t, version.GetVersion(), body["version"])
}

func TestVerify(t *testing.T) {
	s := newTestServer(t, nil)
	rec, body := s.do(t, http.MethodPost, "/v1/tx/verify", sampleTx())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	data := body["data"].(map[string]interface{})
	assert.Equal(t, stubHash.Hex(), data["txHash"])
	assert.Equal(t, "verified", data["status"])
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body["requestId"])
}

func TestVerify_ScriptRejected(t *testing.T) {
	s := newTestServer(t, nil)
	s.ledger.verifyErr = &verifier.GroupError{
		Type:    verifier.LockGroup,
		Program: "range_lookup",
		Err:     fmt.Errorf("%w: 程序 reversed_witness: %w", types.ErrDelegateRejected, types.ErrWrongWitness),
	}

	rec, body := s.do(t, http.MethodPost, "/v1/tx/verify", sampleTx())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "TX_SCRIPT_REJECTED", body["code"])
	assert.Equal(t, float64(18), body["scriptCode"])
	assert.Equal(t, "DelegateRejected", body["scriptReason"])
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body["traceId"])

	details := body["details"].(map[string]interface{})
	assert.Equal(t, "range_lookup", details["program"])
	assert.Equal(t, "lock", details["group"])
	assert.Equal(t, stubHash.Hex(), details["txHash"])
}

func TestSubmit_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown out point", fmt.Errorf("解析输入 0: %w", persistence.ErrUnknownOutPoint), http.StatusConflict, "TX_UNKNOWN_OUT_POINT"},
		{"script", types.ErrInvalidLinkedList, http.StatusUnprocessableEntity, "TX_SCRIPT_REJECTED"},
		{"internal", fmt.Errorf("disk failure"), http.StatusInternalServerError, "COMMON_INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			s.ledger.submitErr = tc.err
			rec, body := s.do(t, http.MethodPost, "/v1/tx/submit", sampleTx())
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestSubmit_Applied(t *testing.T) {
	s := newTestServer(t, nil)
	rec, body := s.do(t, http.MethodPost, "/v1/tx/submit", sampleTx())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "applied", body["data"].(map[string]interface{})["status"])
	assert.Equal(t, 1, s.ledger.submitted)
}

func TestVerify_BadJSON(t *testing.T) {
	s := newTestServer(t, nil)
	rec, body := s.do(t, http.MethodPost, "/v1/tx/verify", `{"inputs": "nope"`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "COMMON_VALIDATION_ERROR", body["code"])
}

func TestCells(t *testing.T) {
	s := newTestServer(t, nil)
	for i := 0; i < 3; i++ {
		s.ledger.cells = append(s.ledger.cells, &types.CellMeta{
			OutPoint: types.OutPoint{TxHash: stubHash, Index: uint32(i)},
			Output:   &types.CellOutput{Capacity: 10, Lock: &types.Script{}},
			Data:     []byte{byte(i)},
		})
	}

	t.Run("list page", func(t *testing.T) {
		rec, body := s.do(t, http.MethodGet, "/v1/cells?page=2&pageSize=2", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, body["data"], 1)
		meta := body["pagination"].(map[string]interface{})
		assert.Equal(t, float64(3), meta["totalItems"])
		assert.Equal(t, float64(2), meta["totalPages"])
		assert.Equal(t, true, meta["hasPrev"])
	})

	t.Run("list beyond end", func(t *testing.T) {
		rec, body := s.do(t, http.MethodGet, "/v1/cells?page=5&pageSize=2", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, body["data"], 0)
	})

	t.Run("get", func(t *testing.T) {
		rec, body := s.do(t, http.MethodGet, "/v1/cells/"+stubHash.Hex()+"/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "0x01", data["data"])
	})

	t.Run("get missing", func(t *testing.T) {
		rec, body := s.do(t, http.MethodGet, "/v1/cells/"+stubHash.Hex()+"/9", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "CELL_NOT_FOUND", body["code"])
	})

	t.Run("bad hash", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodGet, "/v1/cells/0x1234/0", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad index", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodGet, "/v1/cells/"+stubHash.Hex()+"/x", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHashEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	hasher := hash.NewHashService()

	script := &types.Script{CodeHash: types.BytesToHash([]byte{0x07}), HashType: types.HashTypeType, Args: []byte{1, 2}}
	rec, body := s.do(t, http.MethodPost, "/v1/hash/script", script)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, hasher.ScriptHash(script).Hex(), body["data"].(map[string]interface{})["hash"])

	input := types.CellInput{PreviousOutput: types.OutPoint{TxHash: stubHash, Index: 3}}
	rec, body = s.do(t, http.MethodPost, "/v1/hash/instance-id", map[string]interface{}{"input": input, "index": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, hasher.InstanceID(&input, 2).Hex(), body["data"].(map[string]interface{})["hash"])
}

func TestReadOnlyToggle(t *testing.T) {
	s := newTestServer(t, nil)

	rec, _ := s.do(t, http.MethodPost, "/v1/admin/read-only", map[string]interface{}{"enabled": true, "reason": "backup"})
	require.Equal(t, http.StatusOK, rec.Code)

	_, body := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, "read_only", body["status"])
	assert.Equal(t, "backup", body["reason"])

	rec, _ = s.do(t, http.MethodPost, "/v1/admin/read-only", map[string]interface{}{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code)
	_, body = s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, "healthy", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodGet, "/healthz", nil)

	rec, _ := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rangereg_api_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(o *apiconfig.HTTPConfig) { o.WriteRateLimit = 1 })

	rec, _ := s.do(t, http.MethodPost, "/v1/tx/verify", sampleTx())
	require.Equal(t, http.StatusOK, rec.Code)
	rec, body := s.do(t, http.MethodPost, "/v1/tx/verify", sampleTx())
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "COMMON_RATE_LIMITED", body["code"])

	// 读请求使用独立的令牌桶
	rec, _ = s.do(t, http.MethodGet, "/v1/cells", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
