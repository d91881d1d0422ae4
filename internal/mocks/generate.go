package mocks

//go:generate mockery --name JournalStore --srcpkg github.com/aevon-lab/recall/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
