package progress

import (
	"fmt"
	"log"
	"sort"

	courseModels "lms/models/course"
	progressModels "lms/models/progress"

	"gorm.io/gorm"
)

// EnrollmentSyncTolerance is how far (in points) the denormalized enrollment
// percentage may drift from the recomputed value before it is corrected.
// Applies equally to the sweep's self-check of overallProgress.
const EnrollmentSyncTolerance = 5

// Milestone percentages that trigger a learner notification
var milestones = []int{25, 50, 75, 100}

// ProgressNotifier is the external notification collaborator for learner
// progress events. Fire-and-forget; failures never roll back the mutation.
type ProgressNotifier interface {
	ProgressMilestone(userID, courseID uint, percent int)
	CertificateIssued(cert *courseModels.Certificate)
}

// NopProgressNotifier discards all notifications
type NopProgressNotifier struct{}

func (NopProgressNotifier) ProgressMilestone(uint, uint, int)           {}
func (NopProgressNotifier) CertificateIssued(*courseModels.Certificate) {}

// Consistency reconciles progress documents against the authoritative course
// structure and keeps the enrollment record in step. It holds no mutable
// state; one instance is shared across requests.
type Consistency struct {
	db           *gorm.DB
	structure    StructureProvider
	enrollments  EnrollmentStore
	certificates *Certificates
	notifier     ProgressNotifier
}

// NewConsistency builds the reconciliation engine
func NewConsistency(db *gorm.DB, structure StructureProvider, enrollments EnrollmentStore, certificates *Certificates, notifier ProgressNotifier) *Consistency {
	if notifier == nil {
		notifier = NopProgressNotifier{}
	}
	return &Consistency{
		db:           db,
		structure:    structure,
		enrollments:  enrollments,
		certificates: certificates,
		notifier:     notifier,
	}
}

// EnsureCourseProgressConsistency recomputes derived figures from course
// structure, prunes orphaned lesson and section references, and corrects
// drift beyond the tolerance. Safe to run repeatedly: with no intervening writes a second
// run reports no changes.
func (c *Consistency) EnsureCourseProgressConsistency(userID, courseID uint) (*progressModels.ConsistencyReport, error) {
	valid, err := c.structure.LessonIDSet(courseID)
	if err != nil {
		return nil, err
	}
	validSections, err := c.structure.SectionIDSet(courseID)
	if err != nil {
		return nil, err
	}
	total, err := c.structure.TotalLessons(courseID)
	if err != nil {
		return nil, err
	}

	report := &progressModels.ConsistencyReport{}

	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		// Re-read immediately before writing corrections so a concurrent
		// learner write is never clobbered from a stale snapshot
		var doc progressModels.Progress
		if err := c.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&doc).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrProgressNotFound
			}
			return nil, err
		}

		report.WasInconsistent = false
		report.Fixes = nil

		// Prune lesson ids that no longer exist in the course structure
		kept := make([]uint, 0, len(doc.CompletedLessons))
		var orphans []uint
		for _, id := range doc.CompletedLessons {
			if valid[id] {
				kept = append(kept, id)
			} else {
				orphans = append(orphans, id)
			}
		}
		if len(orphans) > 0 {
			doc.CompletedLessons = kept
			report.WasInconsistent = true
			report.Fixes = append(report.Fixes,
				fmt.Sprintf("Removed %d orphaned lesson reference(s): %v", len(orphans), orphans))
		}

		// Section ids are pruned the same way
		keptSections := make([]uint, 0, len(doc.CompletedSections))
		var orphanSections []uint
		for _, id := range doc.CompletedSections {
			if validSections[id] {
				keptSections = append(keptSections, id)
			} else {
				orphanSections = append(orphanSections, id)
			}
		}
		if len(orphanSections) > 0 {
			doc.CompletedSections = keptSections
			report.WasInconsistent = true
			report.Fixes = append(report.Fixes,
				fmt.Sprintf("Removed %d orphaned section reference(s): %v", len(orphanSections), orphanSections))
		}

		calculated := OverallPercentage(len(doc.CompletedLessons), total)
		if diff(calculated, doc.OverallProgress) > EnrollmentSyncTolerance {
			report.Fixes = append(report.Fixes,
				fmt.Sprintf("Corrected overall progress from %d%% to %d%%", doc.OverallProgress, calculated))
			doc.OverallProgress = calculated
			report.WasInconsistent = true
		}

		report.OverallProgress = doc.OverallProgress

		if !report.WasInconsistent {
			return report, nil
		}

		err = saveDocument(c.db, &doc)
		if err == ErrWriteConflict {
			log.Printf("[CONSISTENCY] Write conflict during sweep for user %d course %d, retrying", userID, courseID)
			continue
		}
		if err != nil {
			return nil, err
		}

		c.syncEnrollmentBestEffort(&doc)
		return report, nil
	}
	return nil, ErrWriteConflict
}

// SyncProgressState reconciles a client-submitted snapshot against the
// server document. Newer client snapshots are merged; otherwise the server
// wins and divergent completion sets are reported as conflicts. Nothing is
// ever deleted: "server_wins" only means the response favors the server
// snapshot, and client-only progress reconciles on the client's next write.
func (c *Consistency) SyncProgressState(userID, courseID uint, client progressModels.ClientSnapshot) (*progressModels.SyncResult, error) {
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		var doc progressModels.Progress
		if err := c.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&doc).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrProgressNotFound
			}
			return nil, err
		}

		if client.LastUpdated.After(doc.UpdatedAt) {
			mergeSnapshot(&doc, client)

			err := saveDocument(c.db, &doc)
			if err == ErrWriteConflict {
				log.Printf("[CONSISTENCY] Write conflict during sync for user %d course %d, retrying", userID, courseID)
				continue
			}
			if err != nil {
				return nil, err
			}

			c.syncEnrollmentBestEffort(&doc)
			return &progressModels.SyncResult{
				Resolution: progressModels.ResolutionMerged,
				Progress:   &doc,
			}, nil
		}

		result := &progressModels.SyncResult{
			Resolution: progressModels.ResolutionServerWins,
			Progress:   &doc,
		}

		if client.LastUpdated.Equal(doc.UpdatedAt) {
			// Equal timestamps: report asymmetric completion sets, server
			// state stays authoritative
			serverOnly, clientOnly := diffLessonSets(doc.CompletedLessons, client.CompletedLessons)
			if len(serverOnly) > 0 || len(clientOnly) > 0 {
				result.Conflicts = append(result.Conflicts, progressModels.Conflict{
					Type:       progressModels.ConflictLessonCompletion,
					ServerOnly: serverOnly,
					ClientOnly: clientOnly,
				})
			}
		}
		return result, nil
	}
	return nil, ErrWriteConflict
}

// SyncEnrollment propagates the recomputed percentage onto the enrollment
// record when drift exceeds the tolerance. This is the only path that
// writes to the enrollment from this engine. Completing the course flips
// the status and triggers idempotent certificate issuance.
func (c *Consistency) SyncEnrollment(doc *progressModels.Progress) error {
	enrollment, err := c.enrollments.Get(doc.UserID, doc.CourseID)
	if err != nil {
		return err
	}

	reachedCompletion := doc.OverallProgress >= 100 && enrollment.Status != courseModels.EnrollmentCompleted
	if diff(doc.OverallProgress, enrollment.Progress) <= EnrollmentSyncTolerance && !reachedCompletion {
		return nil
	}

	status := enrollment.Status
	if doc.OverallProgress >= 100 {
		status = courseModels.EnrollmentCompleted
	}
	if err := c.enrollments.SetProgress(enrollment.ID, doc.OverallProgress, status); err != nil {
		return err
	}

	for _, m := range milestones {
		if enrollment.Progress < m && doc.OverallProgress >= m {
			c.notifier.ProgressMilestone(doc.UserID, doc.CourseID, m)
		}
	}

	if status == courseModels.EnrollmentCompleted && enrollment.Status != courseModels.EnrollmentCompleted {
		cert, err := c.certificates.Issue(enrollment.ID)
		if err != nil {
			// Best-effort: issuance is idempotent and re-runs on the next sync
			log.Printf("[CONSISTENCY] Certificate issuance failed for enrollment %d: %v", enrollment.ID, err)
		} else {
			c.notifier.CertificateIssued(cert)
		}
	}
	return nil
}

// syncEnrollmentBestEffort logs instead of propagating: enrollment sync is a
// maintenance concern and must not fail the learner's write
func (c *Consistency) syncEnrollmentBestEffort(doc *progressModels.Progress) {
	if err := c.SyncEnrollment(doc); err != nil && err != ErrEnrollmentNotFound {
		log.Printf("[CONSISTENCY] Enrollment sync failed for user %d course %d: %v", doc.UserID, doc.CourseID, err)
	}
}

// ── internals ──

// mergeSnapshot folds a newer client snapshot into the server document:
// completed sets union, time and progress take the maximum, and per-lesson
// details keep each side's most granular fields
func mergeSnapshot(doc *progressModels.Progress, client progressModels.ClientSnapshot) {
	for _, id := range client.CompletedLessons {
		doc.AddLesson(id)
	}

	if client.OverallProgress > doc.OverallProgress {
		doc.OverallProgress = client.OverallProgress
	}

	engagement := doc.Engagement.Data()
	if client.TimeSpent > engagement.TotalActiveTime {
		engagement.TotalActiveTime = client.TimeSpent
	}
	doc.Engagement = newJSON(engagement)

	details := doc.LessonProgress.Data()
	if details == nil {
		details = make(map[uint]progressModels.LessonDetail)
	}
	for id, clientDetail := range client.LessonProgress {
		serverDetail, ok := details[id]
		if !ok {
			details[id] = clientDetail
			continue
		}
		details[id] = mergeLessonDetail(serverDetail, clientDetail)
	}
	doc.LessonProgress = newJSON(details)
}

func mergeLessonDetail(server, client progressModels.LessonDetail) progressModels.LessonDetail {
	merged := server

	if client.TimeSpent > merged.TimeSpent {
		merged.TimeSpent = client.TimeSpent
	}
	if client.PercentageWatched > merged.PercentageWatched {
		merged.PercentageWatched = client.PercentageWatched
		merged.LastPosition = client.LastPosition
	}
	if merged.CompletedAt == nil && client.CompletedAt != nil {
		merged.CompletedAt = client.CompletedAt
	}
	if !client.StartedAt.IsZero() && (merged.StartedAt.IsZero() || client.StartedAt.Before(merged.StartedAt)) {
		merged.StartedAt = client.StartedAt
	}
	merged.WatchedSegments = append(merged.WatchedSegments, client.WatchedSegments...)
	merged.Notes = append(merged.Notes, client.Notes...)
	merged.Bookmarks = append(merged.Bookmarks, client.Bookmarks...)

	return merged
}

func diffLessonSets(server, client []uint) (serverOnly, clientOnly []uint) {
	serverSet := make(map[uint]bool, len(server))
	for _, id := range server {
		serverSet[id] = true
	}
	clientSet := make(map[uint]bool, len(client))
	for _, id := range client {
		clientSet[id] = true
	}

	for id := range serverSet {
		if !clientSet[id] {
			serverOnly = append(serverOnly, id)
		}
	}
	for id := range clientSet {
		if !serverSet[id] {
			clientOnly = append(clientOnly, id)
		}
	}
	sort.Slice(serverOnly, func(i, j int) bool { return serverOnly[i] < serverOnly[j] })
	sort.Slice(clientOnly, func(i, j int) bool { return clientOnly[i] < clientOnly[j] })
	return serverOnly, clientOnly
}

func diff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
