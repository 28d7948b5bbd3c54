// Package cache provides the build-avoidance caches for jbt.
//
// Two cooperating mechanisms live here:
//
//  1. Fingerprints — deterministic hashes over the inputs of expensive
//     resolution work (build extensions, project dependencies), persisted
//     to a single properties file per build lib directory. When the stored
//     hash matches a freshly computed one, the expensive step is skipped.
//  2. Store — a BoltDB-backed store of compiled outputs keyed by a hash of
//     a compile unit's sources and settings, so unchanged units can be
//     restored instead of recompiled.
//
// Locally built artifact jars have no stable coordinate of their own, so
// the extensions fingerprint is backed by a ledger of (timestamp, path)
// pairs. A local artifact that changed on disk invalidates the cache even
// when the fingerprint inputs are identical.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/magiconair/properties"

	"github.com/jbtool/jbt/internal/deps"
)

const (
	// CacheFile is the name of the fingerprint cache file inside the
	// build lib directory.
	CacheFile = "jbt.cache"

	propertyExtensionsHash   = "jbt.extensions.hash"
	propertyExtensionsLocal  = "jbt.extensions.local"
	propertyDependenciesHash = "jbt.dependencies.hash"
)

// Obsolete cache files from earlier formats, removed on construction.
var legacyCacheFiles = []string{
	"wrapper.properties.hash",
	"jbt-build.hash",
}

// Fingerprints tracks the extensions and dependencies fingerprints for one
// build lib directory. The backing file is read once at construction and
// only written by WriteCache; no locking is performed, a single process is
// assumed per build directory.
type Fingerprints struct {
	file       string
	props      *properties.Properties
	resolution *deps.VersionResolution

	extensionsHash   string
	dependenciesHash string
}

// NewFingerprints creates a fingerprint cache backed by libDir. An
// unreadable or corrupt cache file is treated as an empty cache, which
// makes every validity check fail and forces the expensive path.
func NewFingerprints(libDir string, resolution *deps.VersionResolution) *Fingerprints {
	f := &Fingerprints{
		file:       filepath.Join(libDir, CacheFile),
		resolution: resolution,
	}

	for _, name := range legacyCacheFiles {
		_ = os.Remove(filepath.Join(libDir, name))
	}

	f.props, _ = loadRecord(f.file)

	return f
}

// loadRecord loads the persisted cache record. The second return value
// distinguishes a loaded record from an absent or unreadable one; callers
// receiving false get an empty record and the validity checks fail closed.
func loadRecord(file string) (*properties.Properties, bool) {
	props, err := properties.LoadFile(file, properties.UTF8)
	if err != nil {
		return properties.NewProperties(), false
	}

	return props, true
}

// FingerprintExtensions computes and remembers the extensions-domain hash
// from the version overrides, repository locations, extension coordinates
// and download flags. The concatenation order is fixed; callers must
// supply the collections in a stable order.
func (f *Fingerprints) FingerprintExtensions(repositories, extensions []string, downloadSources, downloadJavadoc bool) {
	overrides := make([]string, 0, len(f.resolution.Overrides()))
	for _, override := range f.resolution.Overrides() {
		overrides = append(overrides, override.String())
	}

	body := strings.Join(overrides, "\n") + "\n" +
		strings.Join(repositories, "\n") + "\n" +
		strings.Join(extensions, "\n") + "\n" +
		strconv.FormatBool(downloadSources) + "\n" +
		strconv.FormatBool(downloadJavadoc)

	f.extensionsHash = hashFingerprint(body)
}

// FingerprintDependencies computes and remembers the dependencies-domain
// hash. Each scope contributes its name followed by its dependency
// coordinates; scopes without dependencies still contribute their name.
func (f *Fingerprints) FingerprintDependencies(repositories []deps.Repository, scopes *deps.DependencyScopes, downloadSources, downloadJavadoc bool) {
	var body strings.Builder

	overrides := make([]string, 0, len(f.resolution.Overrides()))
	for _, override := range f.resolution.Overrides() {
		overrides = append(overrides, override.String())
	}

	body.WriteString(strings.Join(overrides, "\n"))

	for _, repository := range repositories {
		body.WriteString(repository.String())
		body.WriteByte('\n')
	}

	for _, scope := range scopes.Scopes() {
		body.WriteString(scope)
		body.WriteByte('\n')

		for _, dependency := range scopes.Get(scope) {
			body.WriteString(dependency.String())
			body.WriteByte('\n')
		}
	}

	body.WriteString(strconv.FormatBool(downloadSources))
	body.WriteByte('\n')
	body.WriteString(strconv.FormatBool(downloadJavadoc))
	body.WriteByte('\n')

	f.dependenciesHash = hashFingerprint(body.String())
}

// IsExtensionsHashValid reports whether the extensions fingerprint computed
// this session matches the persisted record and every ledger entry still
// holds: the file exists, is readable and has the exact recorded
// modification time.
func (f *Fingerprints) IsExtensionsHashValid() bool {
	if f.extensionsHash == "" || !f.hasRecord() {
		return false
	}

	if stored, _ := f.props.Get(propertyExtensionsHash); stored != f.extensionsHash {
		return false
	}

	ledger, _ := f.props.Get(propertyExtensionsLocal)

	return validateLedger(ledger)
}

// IsDependenciesHashValid reports whether the dependencies fingerprint
// computed this session matches the persisted record. The dependencies
// domain has no ledger; the hash alone decides.
func (f *Fingerprints) IsDependenciesHashValid() bool {
	if f.dependenciesHash == "" || !f.hasRecord() {
		return false
	}

	stored, _ := f.props.Get(propertyDependenciesHash)

	return stored == f.dependenciesHash
}

// hasRecord reports whether a persisted record exists to validate against.
func (f *Fingerprints) hasRecord() bool {
	if f.props.Len() == 0 {
		return false
	}

	_, err := os.Stat(f.file)

	return err == nil
}

// WriteCache persists the fingerprints computed this session. Domains that
// were not fingerprinted keep their previously stored values. When
// localArtifacts is non-nil the extensions ledger is rebuilt from it;
// files that no longer exist or cannot be read are left out. A write
// failure is returned, never swallowed: a silently lost cache write would
// cause perpetual recomputation without any signal.
func (f *Fingerprints) WriteCache(localArtifacts []string) error {
	if f.extensionsHash != "" {
		f.props.Set(propertyExtensionsHash, f.extensionsHash)
	}

	if localArtifacts != nil {
		f.props.Set(propertyExtensionsLocal, formatLedger(localArtifacts))
	}

	if f.dependenciesHash != "" {
		f.props.Set(propertyDependenciesHash, f.dependenciesHash)
	}

	if err := os.MkdirAll(filepath.Dir(f.file), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	out, err := os.Create(f.file)
	if err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	defer out.Close()

	if _, err := f.props.Write(out, properties.UTF8); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// hashFingerprint digests a fingerprint body into the canonical lowercase
// hex form. SHA-256 keeps the value stable across runs and platforms.
func hashFingerprint(body string) string {
	digest := sha256.Sum256([]byte(body))

	return hex.EncodeToString(digest[:])
}
