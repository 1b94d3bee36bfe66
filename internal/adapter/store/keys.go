package store

import (
	"encoding/binary"

	"reward-ledger/internal/core/domain"
)

var (
	adminKeyBytes         = []byte("rewards/instance/admin")
	campaignCountKeyBytes = []byte("rewards/instance/campaign-count")
	campaignPrefix        = []byte("rewards/campaign/")
	userRewardPrefix      = []byte("rewards/user-reward/")
	poolAssetPrefix       = []byte("rewards/pool-asset/")
)

func adminKey() []byte {
	return append([]byte(nil), adminKeyBytes...)
}

func campaignCountKey() []byte {
	return append([]byte(nil), campaignCountKeyBytes...)
}

func campaignKey(id uint32) []byte {
	key := make([]byte, len(campaignPrefix), len(campaignPrefix)+4)
	copy(key, campaignPrefix)
	return binary.BigEndian.AppendUint32(key, id)
}

func userRewardKey(user domain.Address, campaignID uint32) []byte {
	key := make([]byte, len(userRewardPrefix), len(userRewardPrefix)+4+binary.MaxVarintLen64+len(user))
	copy(key, userRewardPrefix)
	key = binary.BigEndian.AppendUint32(key, campaignID)
	return appendSegment(key, user)
}

func poolAssetKey(pool, asset domain.Address) []byte {
	key := make([]byte, len(poolAssetPrefix), len(poolAssetPrefix)+2*binary.MaxVarintLen64+len(pool)+len(asset))
	copy(key, poolAssetPrefix)
	key = appendSegment(key, pool)
	return appendSegment(key, asset)
}

// appendSegment writes a uvarint length-prefixed address so that adjacent
// variable-length segments of any size can never collide.
func appendSegment(key []byte, a domain.Address) []byte {
	key = binary.AppendUvarint(key, uint64(len(a)))
	return append(key, a...)
}
