package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lox/internal/core/domain"
)

func lockWithFoo(t *testing.T) *domain.LockFile {
	t.Helper()
	lock := domain.NewLockFile()
	lock.SetPlatform("default", []string{"main"}, domain.PlatformLinux64, domain.PlatformLock{
		Fingerprint: "abc",
		Conda: []domain.CondaRecord{
			{Name: domain.NewInternedString("foo"), Version: "2", Build: "h000_0", Channel: "main"},
		},
		Pypi: []domain.PypiRecord{
			{Name: domain.NewInternedString("requests"), Version: "2.31.0"},
		},
	})
	return lock
}

func TestLockFileAccessors(t *testing.T) {
	lock := lockWithFoo(t)

	env, ok := lock.Environment("default")
	require.True(t, ok)
	assert.Equal(t, []string{"main"}, env.Channels)

	platform, ok := lock.Platform("default", domain.PlatformLinux64)
	require.True(t, ok)
	assert.Equal(t, "abc", platform.Fingerprint)

	_, ok = lock.Platform("default", domain.PlatformWin64)
	assert.False(t, ok)
	_, ok = lock.Platform("ghost", domain.PlatformLinux64)
	assert.False(t, ok)
}

func TestLockFileContains(t *testing.T) {
	lock := lockWithFoo(t)

	t.Run("conda match", func(t *testing.T) {
		assert.True(t, lock.ContainsMatchSpec("default", domain.PlatformLinux64, "foo ==2"))
		assert.True(t, lock.ContainsMatchSpec("default", domain.PlatformLinux64, "foo"))
		assert.False(t, lock.ContainsMatchSpec("default", domain.PlatformLinux64, "foo ==3"))
		assert.False(t, lock.ContainsMatchSpec("default", domain.PlatformLinux64, "bar"))
	})

	t.Run("build pin", func(t *testing.T) {
		assert.True(t, lock.ContainsMatchSpec("default", domain.PlatformLinux64, "foo ==2 h000_0"))
		assert.False(t, lock.ContainsMatchSpec("default", domain.PlatformLinux64, "foo ==2 h111_1"))
	})

	t.Run("pypi match", func(t *testing.T) {
		assert.True(t, lock.ContainsPypi("default", domain.PlatformLinux64, "requests"))
		assert.False(t, lock.ContainsPypi("default", domain.PlatformLinux64, "requests <2"))
		// The conda record must not satisfy a pypi query.
		assert.False(t, lock.ContainsPypi("default", domain.PlatformLinux64, "foo"))
	})

	t.Run("pypi names match after normalization", func(t *testing.T) {
		denormalized := domain.NewLockFile()
		denormalized.SetPlatform("default", []string{"main"}, domain.PlatformLinux64, domain.PlatformLock{
			Pypi: []domain.PypiRecord{
				{Name: domain.NewInternedString("Foo_bar"), Version: "1.0"},
			},
		})
		assert.True(t, denormalized.ContainsPypi("default", domain.PlatformLinux64, "foo-bar"))
		assert.True(t, denormalized.ContainsPypi("default", domain.PlatformLinux64, "Foo.Bar ==1.0"))
	})

	t.Run("missing pair", func(t *testing.T) {
		assert.False(t, lock.ContainsMatchSpec("default", domain.PlatformWin64, "foo"))
		assert.False(t, lock.ContainsMatchSpec("ghost", domain.PlatformLinux64, "foo"))
	})
}

func TestLockFileClone(t *testing.T) {
	lock := lockWithFoo(t)
	clone := lock.Clone()

	clone.SetPlatform("extra", nil, domain.PlatformWin64, domain.PlatformLock{Fingerprint: "xyz"})
	clone.SetPlatform("default", []string{"main"}, domain.PlatformLinux64, domain.PlatformLock{Fingerprint: "changed"})

	_, ok := lock.Environment("extra")
	assert.False(t, ok, "clone must not leak new environments into the original")

	original, ok := lock.Platform("default", domain.PlatformLinux64)
	require.True(t, ok)
	assert.Equal(t, "abc", original.Fingerprint, "clone must not overwrite original platform entries")
}
