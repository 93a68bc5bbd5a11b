// auth.go
package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func registerAuthRoutes(r *gin.Engine) {
	// landing page; signed-in users go straight to their dashboard
	r.GET("/", func(c *gin.Context) {
		user := getCurrentUser(c)
		if user != nil {
			c.Redirect(http.StatusFound, "/dashboard")
			return
		}

		var courses []Course
		db.Preload("Instructor").
			Where("is_active = ?", true).
			Order("created_at DESC").
			Find(&courses)

		c.HTML(http.StatusOK, "index.html", gin.H{
			"User":    user,
			"Courses": courses,
			"Flash":   popFlash(c),
		})
	})

	r.GET("/register", func(c *gin.Context) {
		c.HTML(http.StatusOK, "register.html", gin.H{
			"User": getCurrentUser(c),
		})
	})

	r.POST("/register", registerHandler)

	r.GET("/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"User": getCurrentUser(c),
		})
	})

	r.POST("/login", loginHandler)

	r.GET("/logout", func(c *gin.Context) {
		sess := sessions.Default(c)
		sess.Clear()
		_ = sess.Save()
		c.Redirect(http.StatusFound, "/")
	})
}

func registerHandler(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(strings.ToLower(c.PostForm("email")))
	password := c.PostForm("password")
	password2 := c.PostForm("password2")
	accountType := c.PostForm("account_type")

	redisplay := func(status int, msg string) {
		c.HTML(status, "register.html", gin.H{
			"Error": msg,
			"Name":  name,
			"Email": email,
		})
	}

	if name == "" || email == "" || password == "" {
		redisplay(http.StatusBadRequest, "Name, email and password are required")
		return
	}
	if len(password) < 6 {
		redisplay(http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}
	if password != password2 {
		redisplay(http.StatusBadRequest, "Passwords do not match")
		return
	}

	// self-service accounts are students or instructors; admins are seeded
	role := RoleStudent
	if accountType == RoleInstructor {
		role = RoleInstructor
	}

	var count int64
	db.Model(&User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		redisplay(http.StatusBadRequest, "A user with this email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		redisplay(http.StatusInternalServerError, "Server error")
		return
	}

	user := User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        rolesJSON(role),
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.Create(&user).Error; err != nil {
		// the count check above can lose a race against a concurrent
		// registration; the unique index on email is the arbiter
		if isUniqueViolation(err) {
			redisplay(http.StatusBadRequest, "A user with this email already exists")
			return
		}
		redisplay(http.StatusInternalServerError, "Could not save user")
		return
	}

	sess := sessions.Default(c)
	sess.Set("user_id", user.ID)
	_ = sess.Save()

	c.Redirect(http.StatusFound, "/dashboard")
}

func loginHandler(c *gin.Context) {
	email := strings.TrimSpace(strings.ToLower(c.PostForm("email")))
	password := c.PostForm("password")

	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Error": "Invalid email or password",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Error": "Invalid email or password",
		})
		return
	}

	now := time.Now().UTC()
	db.Model(&user).Update("last_login_at", &now)

	sess := sessions.Default(c)
	sess.Set("user_id", user.ID)
	_ = sess.Save()

	c.Redirect(http.StatusFound, "/dashboard")
}

// ---------- helpers ----------

func getCurrentUser(c *gin.Context) *User {
	sess := sessions.Default(c)
	idVal := sess.Get("user_id")
	if idVal == nil {
		return nil
	}

	var id uint
	switch v := idVal.(type) {
	case uint:
		id = v
	case int:
		id = uint(v)
	case int64:
		id = uint(v)
	case float64:
		id = uint(v)
	default:
		return nil
	}

	var user User
	if err := db.First(&user, id).Error; err != nil {
		return nil
	}
	return &user
}

func authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if getCurrentUser(c) == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// roleRequired passes when the user holds any of the given roles.
// Membership is tested directly; there is no role hierarchy.
func roleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := getCurrentUser(c)
		if user == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		for _, role := range roles {
			if user.HasRole(role) {
				c.Next()
				return
			}
		}
		c.String(http.StatusForbidden, "Forbidden")
		c.Abort()
	}
}

// canManageCourse: admins manage everything, instructors only their own.
func canManageCourse(user *User, course *Course) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || course.InstructorID == user.ID
}

type Flash struct {
	Kind string // "success" | "warning" | "danger"
	Msg  string
}

func setFlash(c *gin.Context, kind, msg string) {
	sess := sessions.Default(c)
	sess.Set("flash_kind", kind)
	sess.Set("flash_msg", msg)
	_ = sess.Save()
}

func popFlash(c *gin.Context) *Flash {
	sess := sessions.Default(c)
	k, _ := sess.Get("flash_kind").(string)
	m, _ := sess.Get("flash_msg").(string)
	if k == "" || m == "" {
		return nil
	}
	sess.Delete("flash_kind")
	sess.Delete("flash_msg")
	_ = sess.Save()
	return &Flash{Kind: k, Msg: m}
}
