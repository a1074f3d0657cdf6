package clientops

import (
	"fmt"

	"github.com/matrix-org/govault/pkg/dispatch"
	"github.com/matrix-org/govault/pkg/synctranslate"
	"github.com/matrix-org/govault/pkg/update"
	"github.com/sirupsen/logrus"
)

// SyncRequest is the logical /sync request (spec.md §6: query params
// filter, full_state, set_presence, since, timeout).
type SyncRequest struct {
	Filter      string
	FullState   bool
	SetPresence string
	Since       string
	TimeoutMs   int64
}

// BuildSyncAttributes produces the wire-level Attributes for req under
// pathVersion.
func BuildSyncAttributes(pathVersion string, req SyncRequest) Attributes {
	query := map[string]string{}
	if req.Filter != "" {
		query["filter"] = req.Filter
	}
	if req.FullState {
		query["full_state"] = "true"
	}
	if req.SetPresence != "" {
		query["set_presence"] = req.SetPresence
	}
	if req.Since != "" {
		query["since"] = req.Since
	}
	if req.TimeoutMs != 0 {
		query["timeout"] = fmt.Sprintf("%d", req.TimeoutMs)
	}
	return Attributes{
		Method:            "GET",
		PathSegments:      pathSegment("_matrix", "client", pathVersion, "sync"),
		AccessTokenHeader: true,
		QueryFields:       query,
	}
}

// SyncResponse carries the raw response body alongside the request's
// since token, everything translateSync needs to run synctranslate
// (spec.md §4.7).
type SyncResponse struct {
	Body  []byte
	Since string
}

func translateSync(rev synctranslate.Revision) func(SyncResponse) update.EnvelopeUpdate {
	return func(r SyncResponse) update.EnvelopeUpdate {
		updates, logs, err := synctranslate.Translate(rev, r.Body, r.Since)
		if err != nil {
			logrus.WithError(err).WithField("since", r.Since).Warn("clientops: sync: malformed /sync body, dropping update")
			return update.EnvelopeMore()
		}
		for _, l := range logs {
			logrus.WithField("since", r.Since).Warn(string(l))
		}
		return update.EnvelopeMore(updates...)
	}
}

// NewSyncTable builds the versioned dispatch table for sync, one
// revision family per spec.md §4.7's four protocol revisions.
// DecodeResponse is left unset: sync's response decoding works directly
// from the raw response body inside translateSync/synctranslate,
// because §4.7's per-revision schema sharing is easier to express as
// gjson path lookups than as one generic codec.Coder[SyncResponse].
func NewSyncTable() (*dispatch.Table[Implementation[SyncResponse]], error) {
	v1 := Implementation[SyncResponse]{EmitUpdate: translateSync(synctranslate.V1)}
	table, err := dispatch.New("sync", "r0.0.0", v1)
	if err != nil {
		return nil, err
	}
	if table, err = table.ForVersion("v1.1", Implementation[SyncResponse]{EmitUpdate: translateSync(synctranslate.V2)}); err != nil {
		return nil, err
	}
	if table, err = table.ForVersion("v1.4", Implementation[SyncResponse]{EmitUpdate: translateSync(synctranslate.V3)}); err != nil {
		return nil, err
	}
	return table.ForVersion("v1.11", Implementation[SyncResponse]{EmitUpdate: translateSync(synctranslate.V4)})
}
