package store

import (
	"strings"

	"swim-admin/internal/model"
)

// Snapshot 某一时刻的完整应用状态。
// 通过 Store.Snapshot 取得的值与 Store 内部不共享可变数据。
type Snapshot struct {
	Users        []model.User
	Courses      []model.Course
	SwapRequests []model.SwapRequest
	CourseTitles []string
}

// Clone 深拷贝
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Users:        make([]model.User, len(s.Users)),
		Courses:      make([]model.Course, len(s.Courses)),
		SwapRequests: make([]model.SwapRequest, len(s.SwapRequests)),
		CourseTitles: make([]string, len(s.CourseTitles)),
	}
	copy(out.Users, s.Users)
	for i, c := range s.Courses {
		out.Courses[i] = c.Clone()
	}
	copy(out.SwapRequests, s.SwapRequests)
	copy(out.CourseTitles, s.CourseTitles)
	return out
}

// UserByID 按 ID 查找人员，悬空引用返回 ok=false
func (s Snapshot) UserByID(id string) (model.User, bool) {
	for _, u := range s.Users {
		if u.UserID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// UserByEmail 按邮箱查找人员（不区分大小写）
func (s Snapshot) UserByEmail(email string) (model.User, bool) {
	email = strings.TrimSpace(email)
	for _, u := range s.Users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return model.User{}, false
}

// UserMap 以 ID 为键的人员索引
func (s Snapshot) UserMap() map[string]model.User {
	m := make(map[string]model.User, len(s.Users))
	for _, u := range s.Users {
		m[u.UserID] = u
	}
	return m
}

// CourseByID 按 ID 查找课程（返回副本）
func (s Snapshot) CourseByID(id string) (model.Course, bool) {
	for _, c := range s.Courses {
		if c.CourseID == id {
			return c.Clone(), true
		}
	}
	return model.Course{}, false
}

// SwapRequestByID 按 ID 查找换班申请
func (s Snapshot) SwapRequestByID(id string) (model.SwapRequest, bool) {
	for _, r := range s.SwapRequests {
		if r.SwapRequestID == id {
			return r, true
		}
	}
	return model.SwapRequest{}, false
}

func (s *Snapshot) upsertUser(u model.User) {
	for i := range s.Users {
		if s.Users[i].UserID == u.UserID {
			s.Users[i] = u
			return
		}
	}
	s.Users = append(s.Users, u)
}

func (s *Snapshot) removeUser(id string) bool {
	for i := range s.Users {
		if s.Users[i].UserID == id {
			s.Users = append(s.Users[:i], s.Users[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Snapshot) courseIndex(id string) int {
	for i := range s.Courses {
		if s.Courses[i].CourseID == id {
			return i
		}
	}
	return -1
}

func (s *Snapshot) removeCourse(id string) bool {
	i := s.courseIndex(id)
	if i < 0 {
		return false
	}
	s.Courses = append(s.Courses[:i], s.Courses[i+1:]...)

	kept := s.SwapRequests[:0]
	for _, r := range s.SwapRequests {
		if r.CourseID != id {
			kept = append(kept, r)
		}
	}
	s.SwapRequests = kept
	return true
}

func (s *Snapshot) upsertSwapRequest(r model.SwapRequest) {
	for i := range s.SwapRequests {
		if s.SwapRequests[i].SwapRequestID == r.SwapRequestID {
			s.SwapRequests[i] = r
			return
		}
	}
	s.SwapRequests = append(s.SwapRequests, r)
}

func (s *Snapshot) addTitle(title string) bool {
	for _, t := range s.CourseTitles {
		if strings.EqualFold(t, title) {
			return false
		}
	}
	s.CourseTitles = append(s.CourseTitles, title)
	return true
}
