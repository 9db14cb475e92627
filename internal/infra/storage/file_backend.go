package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

// Layout en disco:
//
//	<dir>/games_data.yaml       catálogo (expires_at + games)
//	<dir>/groups/<group>.yaml   salas del grupo (games)
const (
	catalogFile = "games_data.yaml"
	groupsDir   = "groups"
)

type FileBackend struct{ dir string }

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Join(dir, groupsDir), 0o755); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) groupPath(group string) (string, error) {
	if group == "" || group == "." || group == ".." || strings.ContainsAny(group, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidGroup, group)
	}
	return filepath.Join(b.dir, groupsDir, group+".yaml"), nil
}

func (b *FileBackend) LoadGroup(_ context.Context, group string) ([]domain.RoomRecord, error) {
	path, err := b.groupPath(group)
	if err != nil {
		return nil, err
	}
	var gr domain.GroupRooms
	found, err := readYAML(path, &gr)
	if err != nil || !found {
		return nil, err
	}
	return gr.Games, nil
}

func (b *FileBackend) SaveGroup(_ context.Context, group string, rooms []domain.RoomRecord) error {
	path, err := b.groupPath(group)
	if err != nil {
		return err
	}
	if rooms == nil {
		rooms = []domain.RoomRecord{}
	}
	return writeYAML(path, domain.GroupRooms{Games: rooms})
}

func (b *FileBackend) DeleteGroup(_ context.Context, group string) error {
	path, err := b.groupPath(group)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (b *FileBackend) LoadCatalog(_ context.Context) (domain.CatalogState, error) {
	var st domain.CatalogState
	_, err := readYAML(filepath.Join(b.dir, catalogFile), &st)
	if err != nil {
		return domain.CatalogState{}, err
	}
	return st, nil
}

func (b *FileBackend) SaveCatalog(_ context.Context, st domain.CatalogState) error {
	if st.Games == nil {
		st.Games = []domain.GameDescriptor{}
	}
	return writeYAML(filepath.Join(b.dir, catalogFile), st)
}

// readYAML: archivo ausente = (false, nil); contenido roto = ErrCorrupt.
func readYAML(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("leer %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return true, nil
}

// writeYAML escribe a un temporal y renombra, así un lector nunca ve medio archivo.
func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
