package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"swim-admin/internal/model"
	pkgerrors "swim-admin/pkg/errors"
)

// CourseRepository 课程数据访问接口（课程连同学员、课时整体读写）
type CourseRepository interface {
	List(ctx context.Context) ([]model.Course, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	Create(ctx context.Context, course *model.Course) error
	// Update 以 version 做乐观锁，整体替换学员与课时
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func preloadChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Participants", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("name ASC")
		}).
		Preload("Sessions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("date ASC, start_time ASC")
		})
}

func (r *courseRepo) List(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := preloadChildren(r.db.WithContext(ctx)).
		Order("created_at ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := preloadChildren(r.db.WithContext(ctx)).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	if course.Version == 0 {
		course.Version = 1
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(course).Error; err != nil {
			return err
		}
		return saveChildren(tx, course)
	})
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	oldVersion := course.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Course{}).
			Where("course_id = ? AND version = ?", course.CourseID, oldVersion).
			Updates(map[string]interface{}{
				"title":                course.Title,
				"location":             course.Location,
				"price":                course.Price,
				"notes":                course.Notes,
				"color":                course.Color,
				"category":             course.Category,
				"required_instructors": course.RequiredInstructors,
				"required_helpers":     course.RequiredHelpers,
				"leader_id":            course.LeaderID,
				"course_number":        course.CourseNumber,
				"billed_date":          course.BilledDate,
				"pool_rent":            course.PoolRent,
				"attendance_list_sent": course.AttendanceListSent,
				"version":              oldVersion + 1,
				"updated_at":           gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		if err := deleteRemovedChildren(tx, course); err != nil {
			return err
		}
		return saveChildren(tx, course)
	})
	if err != nil {
		return err
	}
	course.Version = oldVersion + 1
	return nil
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		Delete(&model.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ── 子表同步 ──

func deleteRemovedChildren(tx *gorm.DB, course *model.Course) error {
	keepParticipants := make([]string, 0, len(course.Participants))
	for _, p := range course.Participants {
		keepParticipants = append(keepParticipants, p.ParticipantID)
	}
	q := tx.Where("course_id = ?", course.CourseID)
	if len(keepParticipants) > 0 {
		q = q.Where("participant_id NOT IN ?", keepParticipants)
	}
	if err := q.Delete(&model.Participant{}).Error; err != nil {
		return err
	}

	keepSessions := make([]string, 0, len(course.Sessions))
	for _, s := range course.Sessions {
		keepSessions = append(keepSessions, s.SessionID)
	}
	q = tx.Where("course_id = ?", course.CourseID)
	if len(keepSessions) > 0 {
		q = q.Where("session_id NOT IN ?", keepSessions)
	}
	return q.Delete(&model.Session{}).Error
}

func saveChildren(tx *gorm.DB, course *model.Course) error {
	for i := range course.Participants {
		course.Participants[i].CourseID = course.CourseID
	}
	for i := range course.Sessions {
		course.Sessions[i].CourseID = course.CourseID
		if course.Sessions[i].InstructorIDs == nil {
			course.Sessions[i].InstructorIDs = model.StringArray{}
		}
	}

	if len(course.Participants) > 0 {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "participant_id"}},
			UpdateAll: true,
		}).Create(&course.Participants).Error
		if err != nil {
			return err
		}
	}
	if len(course.Sessions) > 0 {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			UpdateAll: true,
		}).Create(&course.Sessions).Error
		if err != nil {
			return err
		}
	}
	return nil
}
