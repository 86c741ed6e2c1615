// Package aggregator collapses raw activity rows into per-device totals.
package aggregator

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/epoch-rewards/modules/rewards/internal/entity"
	"github.com/shopspring/decimal"
)

// Aggregate groups rows by device, summing points, tasks and quality-verified counts and keeping the max streak.
// Devices missing from the registry are dropped and returned in dropped; their points are not distributed.
// The result is sorted by device id, which is the stable order used for ranking downstream.
func Aggregate(rows []entity.ActivityRow, devices map[string]entity.DeviceInfo, staked map[common.Address]bool) (stats []entity.DeviceEpochStat, dropped []string) {
	byDevice := make(map[string]*entity.DeviceEpochStat)
	droppedSet := make(map[string]struct{})
	for _, row := range rows {
		info, ok := devices[row.DeviceID]
		if !ok {
			droppedSet[row.DeviceID] = struct{}{}
			continue
		}
		stat, ok := byDevice[row.DeviceID]
		if !ok {
			stat = &entity.DeviceEpochStat{
				DeviceID:     row.DeviceID,
				Wallet:       info.Wallet,
				Tier:         info.Tier,
				RawPoints:    decimal.Zero,
				GeoCell:      info.GeoCell,
				RegisteredAt: info.RegisteredAt,
				TrustWeek:    info.TrustWeek,
				IsStaked:     info.Tier == entity.TierValidator && staked[info.Wallet],
			}
			byDevice[row.DeviceID] = stat
		}
		if row.Points.IsPositive() {
			stat.RawPoints = stat.RawPoints.Add(row.Points)
		}
		stat.TasksCompleted += max(row.TasksCompleted, 0)
		stat.QualityVerifiedCount += max(row.QualityVerified, 0)
		stat.MaxStreakDays = max(stat.MaxStreakDays, row.StreakDays)
	}

	stats = make([]entity.DeviceEpochStat, 0, len(byDevice))
	for _, stat := range byDevice {
		stat.QualityVerifiedCount = min(stat.QualityVerifiedCount, stat.TasksCompleted)
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].DeviceID < stats[j].DeviceID })

	dropped = make([]string, 0, len(droppedSet))
	for id := range droppedSet {
		dropped = append(dropped, id)
	}
	sort.Strings(dropped)
	return stats, dropped
}

// DeviceIDs returns the distinct device ids referenced by rows.
func DeviceIDs(rows []entity.ActivityRow) []string {
	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0)
	for _, row := range rows {
		if _, ok := seen[row.DeviceID]; ok {
			continue
		}
		seen[row.DeviceID] = struct{}{}
		ids = append(ids, row.DeviceID)
	}
	sort.Strings(ids)
	return ids
}
