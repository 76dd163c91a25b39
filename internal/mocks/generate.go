package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/prediction --output domain/prediction --outpkg predictionmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/fantasy --output domain/fantasy --outpkg fantasymock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RosterProvider --dir ../usecase --output usecase --outpkg usecasemock --filename roster_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name MatchLister --dir ../usecase --output usecase --outpkg usecasemock --filename match_lister_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Scorer --dir ../usecase --output usecase --outpkg usecasemock --filename scorer_mock.go
