package store

import (
	"fmt"
	"time"
)

// assetCacheKey identifies an asset by type, id and crc. A lookup
// finds only an entry noted with the same crc; crc==0 (spec.md §3.1's
// "any version acceptable") is its own key here, not a wildcard.
func assetCacheKey(assetType string, assetID int32, crc uint32) string {
	return fmt.Sprintf("%s:%d:%d", assetType, assetID, crc)
}

// NoteAssetSeen records that the server has observed an asset of the
// given type/id/crc, for the qAst/sAst/rAst wire ops and the VM's
// prop-identity builtins to resolve against (SPEC_FULL §3.7
// expansion). This is a cache of identity only — no asset bytes are
// stored, matching spec.md §1's exclusion of asset storage.
func (s *Store) NoteAssetSeen(assetType string, assetID int32, crc uint32) {
	s.assetCache.Add(assetCacheKey(assetType, assetID, crc), AssetCacheEntry{
		AssetType: assetType,
		AssetID:   assetID,
		CRC32:     crc,
		LastSeen:  time.Now().Unix(),
	})
}

// LookupAsset returns the last-seen metadata for an asset identity, if
// the cache has observed it.
func (s *Store) LookupAsset(assetType string, assetID int32, crc uint32) (AssetCacheEntry, bool) {
	return s.assetCache.Get(assetCacheKey(assetType, assetID, crc))
}
