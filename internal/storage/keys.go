package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Bucket names. Each corresponds to one logical key prefix ("mem:",
// "tag:", "date:", "imp:", "type:", "edge:", "ent:"); bbolt buckets
// give us the same prefix-scan semantics without having to share one
// flat keyspace.
const (
	bucketMemories = "mem"
	bucketTagIdx   = "tag"
	bucketDateIdx  = "date"
	bucketImpIdx   = "imp"
	bucketTypeIdx  = "type"
	bucketEdges    = "edge"
	bucketAdj      = "adj"
	bucketEntIdx   = "ent"
	bucketMeta     = "meta"
)

var allBuckets = []string{
	bucketMemories, bucketTagIdx, bucketDateIdx, bucketImpIdx,
	bucketTypeIdx, bucketEdges, bucketAdj, bucketEntIdx, bucketMeta,
}

const sep = "\x00"

func memKey(userID, id string) []byte {
	return []byte(userID + sep + id)
}

func userPrefix(userID string) []byte {
	return []byte(userID + sep)
}

func tagKey(userID, tag, id string) []byte {
	return []byte(userID + sep + tag + sep + id)
}

func tagPrefix(userID, tag string) []byte {
	return []byte(userID + sep + tag + sep)
}

func dateKey(userID string, t time.Time, id string) []byte {
	return []byte(userID + sep + yyyymmdd(t) + sep + id)
}

func datePrefix(userID, yyyymmddStr string) []byte {
	return []byte(userID + sep + yyyymmddStr + sep)
}

func yyyymmdd(t time.Time) string {
	return t.UTC().Format("20060102")
}

func impKey(userID string, bucket int, id string) []byte {
	return []byte(userID + sep + strconv.Itoa(bucket) + sep + id)
}

func impPrefix(userID string, bucket int) []byte {
	return []byte(userID + sep + strconv.Itoa(bucket) + sep)
}

func typeKey(userID, memType, id string) []byte {
	return []byte(userID + sep + memType + sep + id)
}

func typePrefix(userID, memType string) []byte {
	return []byte(userID + sep + memType + sep)
}

func entKey(userID, normalized, id string) []byte {
	return []byte(userID + sep + normalized + sep + id)
}

func entPrefix(userID, normalized string) []byte {
	return []byte(userID + sep + normalized + sep)
}

func edgeKey(minID, maxID string) []byte {
	return []byte(minID + sep + maxID)
}

func adjKey(nodeID, otherID string) []byte {
	return []byte(nodeID + sep + otherID)
}

func adjPrefix(nodeID string) []byte {
	return []byte(nodeID + sep)
}

// splitLast extracts the trailing id component after the last sep.
func splitLast(key []byte) string {
	parts := strings.Split(string(key), sep)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func lastTwoBy(key []byte) (string, string) {
	parts := strings.Split(string(key), sep)
	if len(parts) < 2 {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}

func fmtBucket(bucket int) string {
	return fmt.Sprintf("%d", bucket)
}
