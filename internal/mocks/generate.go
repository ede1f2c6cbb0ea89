package mocks

//go:generate mockery --name StatStore --srcpkg github.com/bluecover-lab/project-bluecover/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
