package session_test

import (
	"sync"
	"testing"

	"github.com/okian/reelrank/internal/session"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given a new session store", t, func() {
		s := session.New()

		Convey("Then it should start unauthenticated", func() {
			So(s.IsAuthenticated(), ShouldBeFalse)
			So(s.Token(), ShouldBeEmpty)
			So(s.UserID(), ShouldBeEmpty)
		})

		Convey("When logging in", func() {
			s.Login("alice", " tok-1 ")

			Convey("Then credentials should be exposed trimmed", func() {
				So(s.IsAuthenticated(), ShouldBeTrue)
				So(s.Token(), ShouldEqual, "tok-1")
				So(s.UserID(), ShouldEqual, "alice")
			})

			Convey("And logging out should clear them", func() {
				s.Logout()
				So(s.IsAuthenticated(), ShouldBeFalse)
				So(s.UserID(), ShouldBeEmpty)
			})
		})

		Convey("When logging in with a blank token", func() {
			s.Login("bob", "   ")
			So(s.IsAuthenticated(), ShouldBeFalse)
		})
	})

	Convey("Given a store seeded with credentials", t, func() {
		s := session.New(session.WithCredentials("carol", "tok-2"))
		So(s.IsAuthenticated(), ShouldBeTrue)
		So(s.UserID(), ShouldEqual, "carol")
	})

	Convey("Given concurrent readers and writers", t, func() {
		s := session.New()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					s.Login("u", "t")
					s.Logout()
				}
			}()
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_ = s.IsAuthenticated()
					_ = s.Token()
				}
			}()
		}
		wg.Wait()
		So(s.IsAuthenticated(), ShouldBeFalse)
	})
}
