package domain

import "time"

type mapOptions struct {
	sensitive bool
	public    bool
	client    bool
	skills    bool
	job       bool
	applicant bool
}

// MapOption selects what a representation includes beyond the entity's own fields.
type MapOption func(*mapOptions)

// WithSensitive includes the password hash. Only the service layer's password checks
// use it; such a map must never be written to a response.
func WithSensitive() MapOption { return func(o *mapOptions) { o.sensitive = true } }

// Public drops contact fields from user representations.
func Public() MapOption { return func(o *mapOptions) { o.public = true } }

func WithClient() MapOption    { return func(o *mapOptions) { o.client = true } }
func WithSkills() MapOption    { return func(o *mapOptions) { o.skills = true } }
func WithJob() MapOption       { return func(o *mapOptions) { o.job = true } }
func WithApplicant() MapOption { return func(o *mapOptions) { o.applicant = true } }

func buildOptions(opts []MapOption) mapOptions {
	var o mapOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func isoTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func enumValue[T ~string](v T) interface{} {
	if v == "" {
		return nil
	}
	return string(v)
}

func (u *User) ToMap(opts ...MapOption) map[string]interface{} {
	o := buildOptions(opts)
	m := map[string]interface{}{
		"id":         u.ID,
		"name":       u.DisplayName(),
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"role":       enumValue(u.Role),
		"bio":        u.Bio,
		"company":    u.Company,
		"position":   u.Position,
		"created_at": isoTime(u.CreatedAt),
		"updated_at": isoTime(u.UpdatedAt),
	}
	if !o.public {
		m["email"] = u.Email
		m["phone"] = u.Phone
	}
	if o.sensitive {
		m["password_hash"] = u.PasswordHash
	}
	if o.skills {
		m["skills"] = SkillsToMaps(u.Skills)
	}
	return m
}

func (s *Skill) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":    s.ID,
		"name":  s.Name,
		"level": s.Level,
	}
}

func SkillsToMaps(skills []Skill) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(skills))
	for i := range skills {
		out = append(out, skills[i].ToMap())
	}
	return out
}

func (j *Job) ToMap(opts ...MapOption) map[string]interface{} {
	o := buildOptions(opts)
	m := map[string]interface{}{
		"id":           j.ID,
		"title":        j.Title,
		"description":  j.Description,
		"requirements": j.Requirements,
		"budget":       j.Budget,
		"budget_min":   j.BudgetMin,
		"budget_max":   j.BudgetMax,
		"status":       enumValue(j.Status),
		"is_featured":  j.IsFeatured,
		"client_id":    j.ClientID,
		"created_at":   isoTime(j.CreatedAt),
		"updated_at":   isoTime(j.UpdatedAt),
	}
	if o.client {
		if j.Client != nil {
			m["client"] = j.Client.ToMap(Public())
		} else {
			m["client"] = nil
		}
	}
	if o.skills {
		m["skills"] = SkillsToMaps(j.Skills)
	}
	return m
}

func JobsToMaps(jobs []Job, opts ...MapOption) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(jobs))
	for i := range jobs {
		out = append(out, jobs[i].ToMap(opts...))
	}
	return out
}

// ToMap never includes the extracted resume text. WithJob inlines the job together
// with its client when loaded.
func (a *Application) ToMap(opts ...MapOption) map[string]interface{} {
	o := buildOptions(opts)
	m := map[string]interface{}{
		"id":              a.ID,
		"job_id":          a.JobID,
		"applicant_id":    a.ApplicantID,
		"cover_letter":    a.CoverLetter,
		"resume_url":      a.ResumeURL,
		"has_resume_text": a.ResumeText != nil && *a.ResumeText != "",
		"status":          enumValue(a.Status),
		"match_score":     a.MatchScore,
		"screening_notes": a.ScreeningNotes,
		"created_at":      isoTime(a.CreatedAt),
		"updated_at":      isoTime(a.UpdatedAt),
	}
	if o.job {
		if a.Job != nil {
			m["job"] = a.Job.ToMap(WithClient())
		} else {
			m["job"] = nil
		}
	}
	if o.applicant {
		if a.Applicant != nil {
			m["applicant"] = a.Applicant.ToMap(Public())
		} else {
			m["applicant"] = nil
		}
	}
	return m
}

func ApplicationsToMaps(apps []Application, opts ...MapOption) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(apps))
	for i := range apps {
		out = append(out, apps[i].ToMap(opts...))
	}
	return out
}
