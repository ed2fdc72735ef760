package memory

import (
	"sort"

	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

// ========== Feedback Repository ==========

// SaveFeedback 保存一次学生反馈，重复提交返回 ErrFeedbackExists
func (s *Store) SaveFeedback(f *domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := f.StudentID + ":" + f.ScheduleID
	if _, ok := s.byStudent[key]; ok {
		return storage.ErrFeedbackExists
	}

	cp := *f
	cp.Ratings = append([]domain.Rating(nil), f.Ratings...)
	s.feedback[f.ID] = &cp
	s.byStudent[key] = f.ID
	return nil
}

// ListFeedbackBySchedule 返回某条开课安排下的全部反馈
func (s *Store) ListFeedbackBySchedule(scheduleID string) ([]domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Feedback
	for _, f := range s.feedback {
		if f.ScheduleID == scheduleID {
			cp := *f
			cp.Ratings = append([]domain.Rating(nil), f.Ratings...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// feedbackAverage 计算一批反馈的总均分与条数
func feedbackAverage(items []*domain.Feedback) (count int, avg float64) {
	var sum, n int
	for _, f := range items {
		for _, r := range f.Ratings {
			sum += r.Score
			n++
		}
	}
	if n == 0 {
		return len(items), 0
	}
	return len(items), float64(sum) / float64(n)
}

// SubjectReports 按课程聚合反馈均分
func (s *Store) SubjectReports() ([]domain.SubjectReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bySubject := make(map[string][]*domain.Feedback)
	for _, f := range s.feedback {
		sc, ok := s.schedules[f.ScheduleID]
		if !ok {
			continue
		}
		bySubject[sc.SubjectID] = append(bySubject[sc.SubjectID], f)
	}

	var out []domain.SubjectReport
	for subjectID, items := range bySubject {
		sub, ok := s.subjects[subjectID]
		if !ok {
			continue
		}
		count, avg := feedbackAverage(items)
		out = append(out, domain.SubjectReport{
			SubjectID:     subjectID,
			SubjectCode:   sub.Code,
			SubjectName:   sub.Name,
			FeedbackCount: count,
			AverageScore:  avg,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectCode < out[j].SubjectCode })
	return out, nil
}

// FacultyReports 按教师聚合反馈均分
func (s *Store) FacultyReports() ([]domain.FacultyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byFaculty := make(map[string][]*domain.Feedback)
	for _, f := range s.feedback {
		sc, ok := s.schedules[f.ScheduleID]
		if !ok {
			continue
		}
		byFaculty[sc.FacultyID] = append(byFaculty[sc.FacultyID], f)
	}

	var out []domain.FacultyReport
	for facultyID, items := range byFaculty {
		fac, ok := s.faculty[facultyID]
		if !ok {
			continue
		}
		count, avg := feedbackAverage(items)
		out = append(out, domain.FacultyReport{
			FacultyID:     facultyID,
			FacultyName:   fac.Name,
			FeedbackCount: count,
			AverageScore:  avg,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FacultyName < out[j].FacultyName })
	return out, nil
}

// DepartmentReports 按院系聚合反馈均分与学生规模
func (s *Store) DepartmentReports() ([]domain.DepartmentReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDept := make(map[string][]*domain.Feedback)
	for _, f := range s.feedback {
		sc, ok := s.schedules[f.ScheduleID]
		if !ok {
			continue
		}
		sub, ok := s.subjects[sc.SubjectID]
		if !ok {
			continue
		}
		byDept[sub.DepartmentID] = append(byDept[sub.DepartmentID], f)
	}

	studentCount := make(map[string]int)
	for _, st := range s.students {
		studentCount[st.DepartmentID]++
	}

	var out []domain.DepartmentReport
	for _, d := range s.departments {
		items := byDept[d.ID]
		count, avg := feedbackAverage(items)
		out = append(out, domain.DepartmentReport{
			DepartmentID:   d.ID,
			DepartmentName: d.Name,
			StudentCount:   studentCount[d.ID],
			FeedbackCount:  count,
			AverageScore:   avg,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DepartmentName < out[j].DepartmentName })
	return out, nil
}
