package progress

import "errors"

// ErrProgressNotFound means no progress document exists for the pair and the
// operation does not create one
var ErrProgressNotFound = errors.New("progress document not found")

// ErrEnrollmentNotFound means the learner has no enrollment for the course
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// ErrLessonNotFound means the lesson id is not part of the course structure
var ErrLessonNotFound = errors.New("lesson not found in course structure")

// ErrSectionNotFound means the section id is not part of the course structure
var ErrSectionNotFound = errors.New("section not found in course structure")

// ErrVerificationFailed means a write succeeded at the store level but the
// read-back does not reflect it. Fatal for the operation, never swallowed.
var ErrVerificationFailed = errors.New("persistence verification failed")

// ErrWriteConflict means an optimistic-concurrency write lost to a
// concurrent writer and exhausted its retries
var ErrWriteConflict = errors.New("progress document was modified by another operation")
