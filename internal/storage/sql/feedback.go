package sql

import (
	"campusfeedback/backend/internal/domain"
	"campusfeedback/backend/internal/storage"
)

// ========== Feedback Repository ==========

// SaveFeedback 在单个事务内写入反馈与全部评分
//
// (student_id, schedule_id) 上的唯一索引保证重复提交在
// 数据库侧被拒绝，而不是依赖先查后写。
func (s *Store) SaveFeedback(f *domain.Feedback) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertFeedback := s.rebind(`
		INSERT INTO feedbacks (id, student_id, schedule_id, comment, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if _, err := tx.Exec(insertFeedback, f.ID, f.StudentID, f.ScheduleID, f.Comment, f.CreatedAt); err != nil {
		if isDuplicateKey(err) {
			return storage.ErrFeedbackExists
		}
		return err
	}

	insertRating := s.rebind(`
		INSERT INTO ratings (id, feedback_id, question, score)
		VALUES (?, ?, ?, ?)
	`)
	for _, r := range f.Ratings {
		if _, err := tx.Exec(insertRating, r.ID, f.ID, r.Question, r.Score); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListFeedbackBySchedule 返回某条开课安排下的全部反馈（含评分）
func (s *Store) ListFeedbackBySchedule(scheduleID string) ([]domain.Feedback, error) {
	query := s.rebind(`
		SELECT id, student_id, schedule_id, comment, created_at
		FROM feedbacks
		WHERE schedule_id = ?
		ORDER BY created_at
	`)
	rows, err := s.db.Query(query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.StudentID, &f.ScheduleID, &f.Comment, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ratingQuery := s.rebind(`
		SELECT id, feedback_id, question, score FROM ratings WHERE feedback_id = ? ORDER BY question
	`)
	for i := range out {
		rrows, err := s.db.Query(ratingQuery, out[i].ID)
		if err != nil {
			return nil, err
		}
		for rrows.Next() {
			var r domain.Rating
			if err := rrows.Scan(&r.ID, &r.FeedbackID, &r.Question, &r.Score); err != nil {
				rrows.Close()
				return nil, err
			}
			out[i].Ratings = append(out[i].Ratings, r)
		}
		if err := rrows.Err(); err != nil {
			rrows.Close()
			return nil, err
		}
		rrows.Close()
	}
	return out, nil
}

// SubjectReports 按课程聚合反馈均分（数据库侧 JOIN + GROUP BY）
func (s *Store) SubjectReports() ([]domain.SubjectReport, error) {
	rows, err := s.db.Query(`
		SELECT sub.id, sub.code, sub.name,
		       COUNT(DISTINCT f.id), COALESCE(AVG(r.score), 0)
		FROM subjects sub
		JOIN schedules sc ON sc.subject_id = sub.id
		JOIN feedbacks f ON f.schedule_id = sc.id
		JOIN ratings r ON r.feedback_id = f.id
		GROUP BY sub.id, sub.code, sub.name
		ORDER BY sub.code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SubjectReport
	for rows.Next() {
		var rep domain.SubjectReport
		if err := rows.Scan(&rep.SubjectID, &rep.SubjectCode, &rep.SubjectName,
			&rep.FeedbackCount, &rep.AverageScore); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// FacultyReports 按教师聚合反馈均分
func (s *Store) FacultyReports() ([]domain.FacultyReport, error) {
	rows, err := s.db.Query(`
		SELECT fac.id, fac.name,
		       COUNT(DISTINCT f.id), COALESCE(AVG(r.score), 0)
		FROM faculties fac
		JOIN schedules sc ON sc.faculty_id = fac.id
		JOIN feedbacks f ON f.schedule_id = sc.id
		JOIN ratings r ON r.feedback_id = f.id
		GROUP BY fac.id, fac.name
		ORDER BY fac.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FacultyReport
	for rows.Next() {
		var rep domain.FacultyReport
		if err := rows.Scan(&rep.FacultyID, &rep.FacultyName, &rep.FeedbackCount, &rep.AverageScore); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// DepartmentReports 按院系聚合反馈均分与学生规模
//
// LEFT JOIN 保证没有任何反馈的院系也出现在报表里。
func (s *Store) DepartmentReports() ([]domain.DepartmentReport, error) {
	rows, err := s.db.Query(`
		SELECT d.id, d.name,
		       (SELECT COUNT(*) FROM students st WHERE st.department_id = d.id),
		       COUNT(DISTINCT f.id), COALESCE(AVG(r.score), 0)
		FROM departments d
		LEFT JOIN subjects sub ON sub.department_id = d.id
		LEFT JOIN schedules sc ON sc.subject_id = sub.id
		LEFT JOIN feedbacks f ON f.schedule_id = sc.id
		LEFT JOIN ratings r ON r.feedback_id = f.id
		GROUP BY d.id, d.name
		ORDER BY d.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DepartmentReport
	for rows.Next() {
		var rep domain.DepartmentReport
		if err := rows.Scan(&rep.DepartmentID, &rep.DepartmentName, &rep.StudentCount,
			&rep.FeedbackCount, &rep.AverageScore); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
