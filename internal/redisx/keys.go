package redisx

import "time"

const (
	// Idempotent issuance create: idem:issuance:create:{idempotency_key} -> issuance_id
	// ("pending:{token}" while the owning request runs)
	KeyIdemIssuanceCreate = "idem:issuance:create:%s"

	// Dedup event processing: dedup:{consumer}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
